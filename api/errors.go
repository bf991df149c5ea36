package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/poiesic/scout/core"
)

// Response messages.
const (
	MessageBadRequest          = "invalid request"
	MessageNotFound            = "No candidates found"
	MessageUnavailable         = "upstream service unavailable"
	MessageInternalServerError = "internal server error"
)

// AppError is an error carrying the HTTP status it should be reported with.
type AppError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewAppError creates an AppError.
func NewAppError(statusCode int, message string, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Cause: cause}
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

func errorMiddleware(logger *slog.Logger) fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", "panic", r, "path", c.Path(), "request_id", requestID(c))
				err = c.Status(fiber.StatusInternalServerError).JSON(errorBody{Detail: MessageInternalServerError})
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg := normalizeError(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "status", status, "path", c.Path(), "request_id", requestID(c), "err", err)
		}
		return c.Status(status).JSON(errorBody{Detail: msg})
	}
}

// normalizeError maps an error onto a status and a client-safe message.
// Messages of server-side failures are never echoed.
func normalizeError(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode > 0 {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			return appErr.StatusCode, MessageInternalServerError
		}
		msg := appErr.Message
		if msg == "" {
			msg = MessageBadRequest
		}
		return appErr.StatusCode, msg
	}

	switch {
	case errors.Is(err, core.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrNotFound):
		return fiber.StatusNotFound, MessageNotFound
	case errors.Is(err, core.ErrUpstreamUnavailable):
		return fiber.StatusServiceUnavailable, MessageUnavailable
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code > 0 && fiberErr.Code < fiber.StatusInternalServerError {
		return fiberErr.Code, fiberErr.Message
	}
	return fiber.StatusInternalServerError, MessageInternalServerError
}
