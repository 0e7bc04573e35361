package helper

import (
	"strings"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParseUUIDParam reads a path param as uuid; a malformed id is a validation error on that param.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperror.ValidationField(name, name+" must be a valid uuid")
	}
	return id, nil
}

// ParseBody decodes the request body and validates it.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("invalid request body", nil).WithErr(err)
	}
	return ValidateStruct(out)
}
