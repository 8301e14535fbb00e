package handlers

import (
	"context"
	"errors"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
	SeverityCritical
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError analyzes an error and returns a HandlerError with appropriate severity and messages
func classifyHandlerError(err error) *HandlerError {
	handlerErr := &HandlerError{
		Err:         err,
		UserMessage: render.ClassifyError(err),
		LogMessage:  "handler error",
		Severity:    SeverityError,
	}

	var upstreamErr *entity.UpstreamError
	switch {
	case err == nil:
		handlerErr.LogMessage = "unknown error"
		handlerErr.Severity = SeverityWarning
	case errors.Is(err, entity.ErrMissingCredential):
		handlerErr.LogMessage = "completion API key not configured"
		handlerErr.Severity = SeverityCritical
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrBusy),
		errors.Is(err, entity.ErrInvalidStep),
		errors.Is(err, entity.ErrNoResult),
		errors.Is(err, entity.ErrInvalidParameter):
		handlerErr.LogMessage = "wizard action rejected"
		handlerErr.Severity = SeverityWarning
	case errors.Is(err, entity.ErrInvalidFile),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrInvalidMediaType):
		handlerErr.LogMessage = "image rejected"
		handlerErr.Severity = SeverityWarning
	case errors.As(err, &upstreamErr):
		handlerErr.LogMessage = "completion API call failed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		handlerErr.LogMessage = "operation timed out"
	}

	return handlerErr
}

// HandleError provides centralized error handling for all handlers.
// It logs the error with appropriate severity and sends a user-friendly message.
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	switch handlerErr.Severity {
	case SeverityCritical, SeverityError:
		ctxzap.Error(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.String("severity", handlerErr.Severity.String()),
			zap.Int64("chat_id", chatID),
		)
	case SeverityWarning:
		ctxzap.Warn(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	}

	h.sendMessage(ctx, chatID, handlerErr.UserMessage, nil)
}
