package command_audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/config"
	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/internal/repository"
	"golang-admin-command-runner/internal/services/command_runner"
	"golang-admin-command-runner/internal/services/notifier"
	"golang-admin-command-runner/internal/utils"
)

const (
	publishTimeout  = 5 * time.Second
	stderrTailLines = 5
)

var ErrUnknownPrincipal = errors.New("unknown principal")

// Executor runs one command line and captures its outcome.
type Executor interface {
	Run(ctx context.Context, line string) (*command_runner.Result, error)
}

type CommandAuditService interface {
	// Save executes and records a new run (ID == 0), or updates the mutable
	// fields of an existing one without executing anything.
	Save(ctx context.Context, run *models.CommandRunEntity) error
	Run(ctx context.Context, runnerID *uint, command string) (*models.CommandRunEntity, error)
	Get(ctx context.Context, id uint) (*models.CommandRunEntity, error)
	List(ctx context.Context, param models.CommandRunQueryParam) ([]models.CommandRunEntity, error)
}

type commandAuditService struct {
	cfg                  *config.RunnerConfig
	logger               *logrus.Logger
	executor             Executor
	commandRunRepository repository.CommandRunRepository
	userRepository       repository.UserRepository
	unitOfWork           repository.UnitOfWork
	publisher            notifier.Publisher
	now                  func() time.Time
}

func NewCommandAuditService(
	cfg *config.RunnerConfig,
	logger *logrus.Logger,
	executor Executor,
	commandRunRepository repository.CommandRunRepository,
	userRepository repository.UserRepository,
	unitOfWork repository.UnitOfWork,
	publisher notifier.Publisher,
) CommandAuditService {
	return &commandAuditService{
		cfg:                  cfg,
		logger:               logger,
		executor:             executor,
		commandRunRepository: commandRunRepository,
		userRepository:       userRepository,
		unitOfWork:           unitOfWork,
		publisher:            publisher,
		now:                  utils.TimeNowUTC,
	}
}

func (s *commandAuditService) Run(ctx context.Context, runnerID *uint, command string) (*models.CommandRunEntity, error) {
	run := &models.CommandRunEntity{
		RunnerID: runnerID,
		Command:  command,
	}
	if err := s.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *commandAuditService) Save(ctx context.Context, run *models.CommandRunEntity) error {
	if run.ID != 0 {
		if err := s.validatePrincipal(ctx, run.RunnerID); err != nil {
			return err
		}
		if err := s.commandRunRepository.Update(ctx, run); err != nil {
			return fmt.Errorf("failed to update command run: %w", err)
		}
		return nil
	}

	if err := s.validatePrincipal(ctx, run.RunnerID); err != nil {
		return err
	}

	// A run that started is always recorded; only the configured timeout
	// bounds it, never the caller going away.
	ctx = context.WithoutCancel(ctx)
	run.ExecutedAt = s.now()
	logger := s.logger.WithFields(logrus.Fields{
		"command":   run.Command,
		"runner_id": run.RunnerID,
	})
	logger.Info("command run started")

	result, err := s.execute(ctx, run.Command)
	if err != nil {
		logger.WithError(err).Error("Failed to execute command")
		return fmt.Errorf("failed to execute command: %w", err)
	}
	s.applyResult(run, result)

	err = s.unitOfWork.Run(func(opts ...utils.DBOption) error {
		return s.commandRunRepository.Create(ctx, run, opts...)
	})
	if err != nil {
		run.ID = 0
		logger.WithError(err).Error("Failed to create command run")
		return fmt.Errorf("failed to create command run: %w", err)
	}

	fields := logrus.Fields{
		"id":       run.ID,
		"status":   run.Status,
		"duration": run.Duration().String(),
	}
	if run.Status != models.StatusCompleted {
		fields["exception"] = run.Exception
		fields["stderr_tail"] = utils.LastLines(run.Stderr, stderrTailLines)
	}
	logger.WithFields(fields).Info("command run finished")

	s.publish(ctx, run)
	return nil
}

func (s *commandAuditService) validatePrincipal(ctx context.Context, runnerID *uint) error {
	if runnerID == nil {
		return nil
	}
	user, err := s.userRepository.GetUserByID(ctx, *runnerID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPrincipal, *runnerID)
	}
	return nil
}

func (s *commandAuditService) execute(ctx context.Context, line string) (*command_runner.Result, error) {
	execCtx := ctx
	if s.cfg != nil && s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(execCtx, s.cfg.Timeout)
		defer cancel()
	}
	return s.executor.Run(execCtx, line)
}

func (s *commandAuditService) applyResult(run *models.CommandRunEntity, result *command_runner.Result) {
	run.Arguments = result.Argv
	if run.Arguments == nil {
		run.Arguments = []string{}
	}
	run.Stdout = result.Stdout
	run.Stderr = result.Stderr
	run.Exception = result.ErrorText()
	run.Status = result.Status()
	run.OutputTruncated = result.Truncated

	switch {
	case result.ExitCode != nil:
		run.ExitCode = sql.NullInt32{Int32: clampExitCode(*result.ExitCode), Valid: true}
	case run.Status == models.StatusCompleted:
		run.ExitCode = sql.NullInt32{Int32: 0, Valid: true}
	}

	finishedAt := result.FinishedAt
	if finishedAt.Before(run.ExecutedAt) {
		finishedAt = run.ExecutedAt
	}
	run.FinishedAt = sql.NullTime{Time: finishedAt, Valid: true}
}

// clampExitCode fits an operation's exit code into the int32 column.
// Process exit statuses always fit; only synthetic codes can be clamped.
func clampExitCode(code int) int32 {
	switch {
	case code > math.MaxInt32:
		return math.MaxInt32
	case code < math.MinInt32:
		return math.MinInt32
	default:
		return int32(code)
	}
}

func (s *commandAuditService) publish(ctx context.Context, run *models.CommandRunEntity) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := models.NewCommandRunEvent(uuid.NewString(), run)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("id", run.ID).Warn("Failed to publish command run event")
	}
}

func (s *commandAuditService) Get(ctx context.Context, id uint) (*models.CommandRunEntity, error) {
	run, err := s.commandRunRepository.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get command run: %w", err)
	}
	return run, nil
}

func (s *commandAuditService) List(ctx context.Context, param models.CommandRunQueryParam) ([]models.CommandRunEntity, error) {
	runs, err := s.commandRunRepository.List(ctx, param)
	if err != nil {
		s.logger.WithError(err).Error("failed to get command runs")
		return nil, fmt.Errorf("failed to get command runs: %w", err)
	}
	return runs, nil
}
