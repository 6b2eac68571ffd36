package models

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type CommandRunStatus string

const (
	StatusCompleted CommandRunStatus = "completed"
	StatusFailed    CommandRunStatus = "failed"
	StatusTimeout   CommandRunStatus = "timeout"
)

// CommandRunEntity is the audit record of one command line execution.
// Everything except RunnerID is written once, when the record is created.
type CommandRunEntity struct {
	ID              uint                        `gorm:"primaryKey"`
	RunnerID        *uint                       `gorm:"index"`
	Runner          *UserEntity                 `gorm:"foreignKey:RunnerID;references:ID;constraint:OnDelete:SET NULL"`
	Command         string                      `gorm:"type:text;not null"`
	Arguments       datatypes.JSONSlice[string] `gorm:"not null"`
	Stdout          string                      `gorm:"type:text;not null"`
	Stderr          string                      `gorm:"type:text;not null"`
	Exception       string                      `gorm:"type:text;not null"`
	Status          CommandRunStatus            `gorm:"type:varchar(20);not null;index"`
	ExitCode        sql.NullInt32
	OutputTruncated bool      `gorm:"not null"`
	ExecutedAt      time.Time `gorm:"not null;index"`
	FinishedAt      sql.NullTime
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (CommandRunEntity) TableName() string {
	return "command_runs"
}

func (c *CommandRunEntity) String() string {
	return fmt.Sprintf("ID %d %s (ran at %s)", c.ID, c.Command, c.ExecutedAt.Format(time.RFC3339))
}

func (c *CommandRunEntity) Duration() time.Duration {
	if !c.FinishedAt.Valid {
		return 0
	}
	return c.FinishedAt.Time.Sub(c.ExecutedAt)
}

func (c *CommandRunEntity) ToResponse() CommandRunResponse {
	resp := CommandRunResponse{
		ID:              c.ID,
		RunnerID:        c.RunnerID,
		Command:         c.Command,
		Arguments:       []string(c.Arguments),
		Stdout:          c.Stdout,
		Stderr:          c.Stderr,
		Exception:       c.Exception,
		Status:          c.Status,
		OutputTruncated: c.OutputTruncated,
		ExecutedAt:      c.ExecutedAt,
	}
	if resp.Arguments == nil {
		resp.Arguments = []string{}
	}
	if c.ExitCode.Valid {
		code := c.ExitCode.Int32
		resp.ExitCode = &code
	}
	if c.FinishedAt.Valid {
		finished := c.FinishedAt.Time
		duration := c.Duration().Milliseconds()
		resp.FinishedAt = &finished
		resp.DurationMs = &duration
	}
	return resp
}

type CommandRunQueryParam struct {
	RunnerID *uint
	Status   CommandRunStatus
	Limit    int
	Offset   int
}

type CreateCommandRunRequest struct {
	Command string `json:"command" binding:"required"`
}

type CommandRunResponse struct {
	ID              uint             `json:"id"`
	RunnerID        *uint            `json:"runner_id"`
	Command         string           `json:"command"`
	Arguments       []string         `json:"arguments"`
	Stdout          string           `json:"stdout"`
	Stderr          string           `json:"stderr"`
	Exception       string           `json:"exception"`
	Status          CommandRunStatus `json:"status"`
	ExitCode        *int32           `json:"exit_code"`
	OutputTruncated bool             `json:"output_truncated"`
	ExecutedAt      time.Time        `json:"executed_at"`
	FinishedAt      *time.Time       `json:"finished_at"`
	DurationMs      *int64           `json:"duration_ms"`
}

type CommandRunListResponse struct {
	Data  []CommandRunResponse `json:"data"`
	Count int                  `json:"count"`
}
