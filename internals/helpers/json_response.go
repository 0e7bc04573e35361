// file: internals/helpers/json_response.go
package helper

import (
	"strings"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

/* ===============================
   Error helpers (standard shape)
=================================*/

type ErrorResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

func statusToErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return apperror.CodeValidation
	case fiber.StatusUnauthorized:
		return apperror.CodeUnauthenticated
	case fiber.StatusForbidden:
		return apperror.CodeForbidden
	case fiber.StatusNotFound:
		return apperror.CodeNotFound
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	case fiber.StatusBadGateway:
		return apperror.CodeUpstream
	default:
		if status >= 500 {
			return apperror.CodeInternal
		}
		return "ERROR"
	}
}

// JsonError: generic error without field details
func JsonError(c *fiber.Ctx, status int, message string) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	if strings.TrimSpace(message) == "" {
		message = fiber.ErrInternalServerError.Message
	}
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Message:   message,
		ErrorCode: statusToErrorCode(status),
	})
}

// JsonValidationError: field errors (400)
func JsonValidationError(c *fiber.Ctx, fieldErrors map[string][]string) error {
	if fieldErrors == nil {
		fieldErrors = map[string][]string{}
	}
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success:   false,
		Message:   "validation failed",
		ErrorCode: apperror.CodeValidation,
		Errors:    fieldErrors,
	})
}

// JsonFromError maps any service error onto the envelope. Internal causes are logged, never sent.
func JsonFromError(c *fiber.Ctx, err error) error {
	ae := apperror.From(err)
	status := ae.Kind.HTTPStatus()

	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(ae.Err).
		Str("request_id", RequestID(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("kind", ae.Kind.String()).
		Str("code", ae.Code).
		Msg(ae.Message)

	msg := ae.Message
	if ae.Kind == apperror.KindInternal {
		msg = "internal server error"
	}
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Message:   msg,
		ErrorCode: ae.Code,
		Errors:    ae.Fields,
	})
}

// ErrorHandler is installed as fiber.Config.ErrorHandler so middleware errors share the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return JsonFromError(c, err)
}

func RequestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("request_id").(string); ok {
		return v
	}
	return ""
}

/* ===============================
   JSON responses (standard success)
=================================*/

// JsonOK: generic success (GET detail, etc.)
func JsonOK(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// JsonList: list without paging, count included
func JsonList(c *fiber.Ctx, message string, data any, count int) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
		"count":   count,
	})
}

// JsonCreated: create success (POST)
func JsonCreated(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "created"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// JsonUpdated: update success (PATCH/PUT)
func JsonUpdated(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "updated"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// JsonDeleted: delete success (DELETE)
func JsonDeleted(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "deleted"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}
