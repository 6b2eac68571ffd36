package models

import "time"

const RedisStreamCommandRuns = "admin:command_runs"

// CommandRunEvent is published once a command run has been committed.
type CommandRunEvent struct {
	EventID    string           `json:"event_id"`
	RunID      uint             `json:"run_id"`
	RunnerID   *uint            `json:"runner_id"`
	Command    string           `json:"command"`
	Status     CommandRunStatus `json:"status"`
	Exception  string           `json:"exception,omitempty"`
	ExitCode   *int32           `json:"exit_code,omitempty"`
	ExecutedAt time.Time        `json:"executed_at"`
	FinishedAt time.Time        `json:"finished_at"`
	DurationMs int64            `json:"duration_ms"`
}

func NewCommandRunEvent(eventID string, run *CommandRunEntity) CommandRunEvent {
	resp := run.ToResponse()
	event := CommandRunEvent{
		EventID:    eventID,
		RunID:      run.ID,
		RunnerID:   run.RunnerID,
		Command:    run.Command,
		Status:     run.Status,
		Exception:  run.Exception,
		ExitCode:   resp.ExitCode,
		ExecutedAt: run.ExecutedAt,
		DurationMs: run.Duration().Milliseconds(),
	}
	if run.FinishedAt.Valid {
		event.FinishedAt = run.FinishedAt.Time
	}
	return event
}
