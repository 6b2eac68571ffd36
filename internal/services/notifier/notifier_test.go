package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/pkg/redis"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newEvent() models.CommandRunEvent {
	runner := uint(7)
	code := int32(3)
	return models.CommandRunEvent{
		EventID:    "evt-1",
		RunID:      42,
		RunnerID:   &runner,
		Command:    `deploy --env "<prod>"`,
		Status:     models.StatusFailed,
		Exception:  "refusing to deploy",
		ExitCode:   &code,
		ExecutedAt: time.Date(2026, time.October, 5, 9, 3, 7, 0, time.UTC),
		DurationMs: 1540,
	}
}

func TestRedisStreamPublisher_Publish(t *testing.T) {
	srv := miniredis.RunT(t)
	host, portStr, _ := strings.Cut(srv.Addr(), ":")
	port, _ := strconv.Atoi(portStr)
	client, err := redis.NewClient(redis.Config{Host: host, Port: port})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	publisher := NewRedisStreamPublisher(client, "")
	if err := publisher.Publish(context.Background(), newEvent()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	entries, err := client.XRange(context.Background(), models.RedisStreamCommandRuns, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stream has %d entries, want 1", len(entries))
	}

	var got models.CommandRunEvent
	if err := json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.RunID != 42 || got.Status != models.StatusFailed || got.EventID != "evt-1" {
		t.Errorf("payload = %+v", got)
	}
}

type fakeSender struct {
	to       telebot.Recipient
	messages []string
	err      error
}

func (f *fakeSender) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.to = to
	f.messages = append(f.messages, what.(string))
	return &telebot.Message{}, f.err
}

func TestTelegramPublisher_Publish(t *testing.T) {
	sender := &fakeSender{}
	publisher, err := NewTelegramPublisher(sender, "-1001")
	if err != nil {
		t.Fatalf("NewTelegramPublisher() error = %v", err)
	}

	if err := publisher.Publish(context.Background(), newEvent()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if sender.to.Recipient() != "-1001" {
		t.Errorf("recipient = %q", sender.to.Recipient())
	}
	msg := sender.messages[0]
	for _, want := range []string{
		"Command run #42 failed",
		"deploy --env &#34;&lt;prod&gt;&#34;",
		"Runner: 7",
		"Started: 05 Oct 2026 - 09:03:07 UTC",
		"Duration: 1.5s",
		"Exit code: 3",
		"<pre>refusing to deploy</pre>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}

	sender.err = errors.New("chat not found")
	if err := publisher.Publish(context.Background(), newEvent()); err == nil {
		t.Error("Publish() should return the send error")
	}
}

func TestNewTelegramPublisher_InvalidChat(t *testing.T) {
	if _, err := NewTelegramPublisher(&fakeSender{}, "general"); err == nil {
		t.Error("NewTelegramPublisher() expected error for non numeric chat id")
	}
}

type publisherFunc func(ctx context.Context, event models.CommandRunEvent) error

func (f publisherFunc) Publish(ctx context.Context, event models.CommandRunEvent) error {
	return f(ctx, event)
}

func TestMulti_Publish(t *testing.T) {
	var calls []string
	failing := publisherFunc(func(context.Context, models.CommandRunEvent) error {
		calls = append(calls, "failing")
		return errors.New("down")
	})
	ok := publisherFunc(func(context.Context, models.CommandRunEvent) error {
		calls = append(calls, "ok")
		return nil
	})

	multi := NewMulti(newTestLogger(), failing, ok)
	if err := multi.Publish(context.Background(), newEvent()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if strings.Join(calls, ",") != "failing,ok" {
		t.Errorf("calls = %v", calls)
	}
}

func TestFormatCommandRunMessage_LongMultiByteException(t *testing.T) {
	event := newEvent()
	event.Exception = "x" + strings.Repeat("é", 200)

	msg := FormatCommandRunMessage(event)
	if !utf8.ValidString(msg) {
		t.Fatalf("message is not valid UTF-8: %q", msg[len(msg)-20:])
	}
	if !strings.HasSuffix(msg, "...</pre>") {
		t.Errorf("exception was not truncated: %q", msg[len(msg)-20:])
	}
}
