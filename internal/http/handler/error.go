package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"recordsapi/internal/http/middleware"
	"recordsapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates service sentinel errors into the response
// envelope. Anything unrecognized becomes an opaque 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
	case errors.Is(err, service.ErrInvalidDocType):
		return writeError(c, fiber.StatusBadRequest, "INVALID_DOC_TYPE", "invalid document type")
	case errors.Is(err, service.ErrInvalidVersion):
		return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "version must be a positive integer")
	case errors.Is(err, service.ErrInvalidFileSize):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_SIZE", "file size must be a positive integer")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the size limit")
	case errors.Is(err, service.ErrUnsupportedMime):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_MIME_TYPE", "only application/pdf is accepted")
	case errors.Is(err, service.ErrTokenInvalid):
		return writeError(c, fiber.StatusBadRequest, "INVALID_TOKEN", "finalize token is not valid")
	case errors.Is(err, service.ErrTokenSignature):
		return writeError(c, fiber.StatusUnauthorized, "TOKEN_SIGNATURE_MISMATCH", "finalize token signature mismatch")
	case errors.Is(err, service.ErrTokenExpired):
		return writeError(c, fiber.StatusUnauthorized, "TOKEN_EXPIRED", "finalize token expired")
	case errors.Is(err, service.ErrUserMismatch):
		return writeError(c, fiber.StatusForbidden, "TOKEN_USER_MISMATCH", "finalize token belongs to another user")
	case errors.Is(err, service.ErrBindingMismatch):
		return writeError(c, fiber.StatusBadRequest, "TOKEN_BINDING_MISMATCH", "finalize token does not match the request")
	case errors.Is(err, service.ErrObjectMissing):
		return writeError(c, fiber.StatusBadRequest, "OBJECT_NOT_FOUND", "uploaded object not found in storage")
	case errors.Is(err, service.ErrDuplicateDocument):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_DOCUMENT", "document already registered")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "not allowed")
	case errors.Is(err, service.ErrLegalHold):
		return writeError(c, fiber.StatusConflict, "LEGAL_HOLD", "document is under legal hold")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "not allowed")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusNotImplemented:
			return writeError(c, status, "NOT_IMPLEMENTED", "not implemented")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
