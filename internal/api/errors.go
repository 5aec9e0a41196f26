// Package api provides error handling utilities for HTTP APIs
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/reelbase/internal/logger"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error   ErrorDetails `json:"error"`
	Success bool         `json:"success"`
}

// ErrorDetails contains detailed error information
type ErrorDetails struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

type mapping struct {
	status int
	code   string
}

var mappings = map[catalogerrors.ErrorType]mapping{
	catalogerrors.ErrorTypeSort:        {http.StatusBadRequest, "INVALID_SORT_FIELD"},
	catalogerrors.ErrorTypeCriteria:    {http.StatusBadRequest, "INVALID_CRITERIA"},
	catalogerrors.ErrorTypeValidation:  {http.StatusBadRequest, "VALIDATION_ERROR"},
	catalogerrors.ErrorTypeRole:        {http.StatusNotFound, "UNKNOWN_ROLE"},
	catalogerrors.ErrorTypeNotFound:    {http.StatusNotFound, "NOT_FOUND"},
	catalogerrors.ErrorTypeConflict:    {http.StatusConflict, "CONFLICT"},
	catalogerrors.ErrorTypeUnsupported: {http.StatusNotImplemented, "NOT_SUPPORTED"},
	catalogerrors.ErrorTypeDatabase:    {http.StatusInternalServerError, "DATABASE_ERROR"},
	catalogerrors.ErrorTypeInternal:    {http.StatusInternalServerError, "INTERNAL_ERROR"},
}

// StatusFor returns the HTTP status and error code for err.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "CANCELLED"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	}
	m, ok := mappings[catalogerrors.GetType(err)]
	if !ok {
		m = mappings[catalogerrors.ErrorTypeInternal]
	}
	return m.status, m.code
}

// RespondWithError sends a structured error response
func RespondWithError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}

	status, code := StatusFor(err)
	details := ErrorDetails{
		Code:      code,
		Message:   err.Error(),
		RequestID: requestID,
	}

	var cErr *catalogerrors.CatalogError
	if errors.As(err, &cErr) {
		details.Context = make(map[string]interface{}, len(cErr.Details)+3)
		for k, v := range cErr.Details {
			details.Context[k] = v
		}
		if cErr.Entity != "" {
			details.Context["entity"] = cErr.Entity
		}
		if cErr.ID != "" {
			details.Context["id"] = cErr.ID
		}
		if cErr.Field != "" {
			details.Context["field"] = cErr.Field
		}
	}

	if status == http.StatusInternalServerError {
		// driver messages stay in the log
		logger.Error("request failed", "error", err, "request_id", requestID, "path", c.Request.URL.Path)
		details.Message = http.StatusText(status)
		details.Context = nil
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: details})
}

// RespondWithValidationError sends a validation error response
func RespondWithValidationError(c *gin.Context, op, message string) {
	RespondWithError(c, catalogerrors.ValidationError(op, "%s", message))
}
