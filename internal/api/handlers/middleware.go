package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/pkg/ratelimit"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderPrincipalID = "X-Principal-ID"

	contextKeyRequestID   = "request_id"
	contextKeyPrincipalID = "principal_id"
)

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Principal reads the optional X-Principal-ID header. Authentication happens
// in front of this service; the header is trusted as is.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderPrincipalID)
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid principal",
				Message: fmt.Sprintf("%s must be a positive integer", HeaderPrincipalID),
				Code:    http.StatusBadRequest,
			})
			return
		}
		c.Set(contextKeyPrincipalID, uint(id))
		c.Next()
	}
}

// principalID returns the principal set by Principal, or nil.
func principalID(c *gin.Context) *uint {
	v, ok := c.Get(contextKeyPrincipalID)
	if !ok {
		return nil
	}
	id := v.(uint)
	return &id
}

// RateLimit rejects requests over the per principal budget, falling back to
// the client address for anonymous callers.
func RateLimit(limiter *ratelimit.KeyedLimiter, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := principalID(c); id != nil {
			key = "principal:" + strconv.FormatUint(uint64(*id), 10)
		}
		if !limiter.Allow(key) {
			logger.WithFields(logrus.Fields{
				"key":        key,
				"request_id": c.GetString(contextKeyRequestID),
			}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "Rate limit exceeded",
				Message: "too many command runs, try again later",
				Code:    http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
