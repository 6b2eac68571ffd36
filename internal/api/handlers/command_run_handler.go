package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/internal/repository"
	"golang-admin-command-runner/internal/services/command_audit"
	"golang-admin-command-runner/internal/services/operations"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// OperationLister exposes the registered commands.
type OperationLister interface {
	List() []operations.Definition
}

type CommandRunHandler struct {
	service    command_audit.CommandAuditService
	operations OperationLister
	logger     *logrus.Logger
}

func NewCommandRunHandler(service command_audit.CommandAuditService, lister OperationLister, logger *logrus.Logger) *CommandRunHandler {
	return &CommandRunHandler{
		service:    service,
		operations: lister,
		logger:     logger,
	}
}

func errorJSON(c *gin.Context, code int, title string, err error) {
	c.JSON(code, models.ErrorResponse{
		Error:   title,
		Message: err.Error(),
		Code:    code,
	})
}

// ListCommands handles GET /api/v1/commands
func (h *CommandRunHandler) ListCommands(c *gin.Context) {
	defs := h.operations.List()
	resp := make([]models.OperationResponse, 0, len(defs))
	for _, def := range defs {
		resp = append(resp, models.OperationResponse{
			Name: def.Name,
			Help: def.Help,
			Kind: def.Kind,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CreateCommandRun handles POST /api/v1/command-runs
func (h *CommandRunHandler) CreateCommandRun(c *gin.Context) {
	var request models.CreateCommandRunRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Debug("Invalid command run request")
		errorJSON(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	run, err := h.service.Run(c.Request.Context(), principalID(c), request.Command)
	if err != nil {
		if errors.Is(err, command_audit.ErrUnknownPrincipal) {
			errorJSON(c, http.StatusBadRequest, "Unknown principal", err)
			return
		}
		h.logger.WithError(err).WithField("request_id", c.GetString(contextKeyRequestID)).Error("Failed to run command")
		errorJSON(c, http.StatusInternalServerError, "Failed to run command", err)
		return
	}

	c.JSON(http.StatusCreated, run.ToResponse())
}

// ListCommandRuns handles GET /api/v1/command-runs
func (h *CommandRunHandler) ListCommandRuns(c *gin.Context) {
	param, err := parseCommandRunQuery(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid query", err)
		return
	}

	runs, err := h.service.List(c.Request.Context(), param)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to list command runs", err)
		return
	}

	resp := models.CommandRunListResponse{
		Data:  make([]models.CommandRunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for i := range runs {
		resp.Data = append(resp.Data, runs[i].ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// GetCommandRun handles GET /api/v1/command-runs/:id
func (h *CommandRunHandler) GetCommandRun(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid id", err)
		return
	}

	run, err := h.service.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrCommandRunNotFound) {
			errorJSON(c, http.StatusNotFound, "Not found", err)
			return
		}
		h.logger.WithError(err).Error("Failed to get command run")
		errorJSON(c, http.StatusInternalServerError, "Failed to get command run", err)
		return
	}

	c.JSON(http.StatusOK, run.ToResponse())
}

func parseCommandRunQuery(c *gin.Context) (models.CommandRunQueryParam, error) {
	param := models.CommandRunQueryParam{Limit: defaultListLimit}

	if raw := c.Query("runner_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return param, errors.New("runner_id must be a positive integer")
		}
		runnerID := uint(id)
		param.RunnerID = &runnerID
	}

	switch status := models.CommandRunStatus(c.Query("status")); status {
	case "":
	case models.StatusCompleted, models.StatusFailed, models.StatusTimeout:
		param.Status = status
	default:
		return param, errors.New("status must be one of completed, failed, timeout")
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return param, errors.New("limit must be a positive integer")
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		param.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return param, errors.New("offset must not be negative")
		}
		param.Offset = offset
	}
	return param, nil
}
