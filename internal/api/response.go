package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
)

func jsonOK(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(fiber.Map{"status": "ok", "data": payload})
}

// jsonErr maps an error to its HTTP status and a stable machine kind.
// Untyped errors surface as a generic internal failure; detail stays in the
// logs.
func jsonErr(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	msg := "internal error"
	var ae *apperr.Error
	if errors.As(err, &ae) && kind != apperr.KindStorage {
		msg = ae.Message
	}
	return c.Status(statusFor(kind)).JSON(fiber.Map{"status": "error", "kind": string(kind), "message": msg})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindValidation, apperr.KindMalformedKey:
		return fiber.StatusBadRequest
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindFileTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case apperr.KindUnsupportedFile:
		return fiber.StatusUnsupportedMediaType
	default:
		return fiber.StatusInternalServerError
	}
}
