package notifier

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"gopkg.in/telebot.v3"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/internal/utils"
)

const maxExceptionLength = 300

// Sender is the part of *telebot.Bot the publisher needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelegramPublisher posts a short summary of each run to one chat.
type TelegramPublisher struct {
	sender Sender
	chatID int64
}

// NewTelegramBot builds an offline bot used only for sending.
func NewTelegramBot(token string) (*telebot.Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

func NewTelegramPublisher(sender Sender, chatID string) (*TelegramPublisher, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}
	return &TelegramPublisher{sender: sender, chatID: id}, nil
}

func (p *TelegramPublisher) Publish(ctx context.Context, event models.CommandRunEvent) error {
	_, err := p.sender.Send(&telebot.Chat{ID: p.chatID}, FormatCommandRunMessage(event), &telebot.SendOptions{
		ParseMode: telebot.ModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send command run notification: %w", err)
	}
	return nil
}

func statusIcon(status models.CommandRunStatus) string {
	switch status {
	case models.StatusCompleted:
		return "✅"
	case models.StatusTimeout:
		return "⏱"
	default:
		return "❌"
	}
}

func FormatCommandRunMessage(event models.CommandRunEvent) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>Command run #%d %s</b>\n", statusIcon(event.Status), event.RunID, event.Status))
	sb.WriteString(fmt.Sprintf("<code>%s</code>\n", html.EscapeString(event.Command)))
	if event.RunnerID != nil {
		sb.WriteString(fmt.Sprintf("Runner: %d\n", *event.RunnerID))
	}
	sb.WriteString(fmt.Sprintf("Started: %s\n", utils.PrettyDate(event.ExecutedAt)))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", utils.PrettyDuration(time.Duration(event.DurationMs)*time.Millisecond)))
	if event.ExitCode != nil {
		sb.WriteString(fmt.Sprintf("Exit code: %d\n", *event.ExitCode))
	}
	if event.Exception != "" {
		sb.WriteString(fmt.Sprintf("\n<pre>%s</pre>", html.EscapeString(utils.TruncateText(event.Exception, maxExceptionLength))))
	}
	return sb.String()
}
