package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mongolens-be/internal/apperr"
)

// ErrorHandlerMiddleware turns domain errors into the JSON envelope every
// endpoint shares. Anything unrecognized becomes a 500 without leaking
// internals beyond the error text.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		case apperr.IsProfileNotFound(err):
			code = fiber.StatusNotFound
		case apperr.IsQueryParse(err):
			code = fiber.StatusBadRequest
		case apperr.IsAbort(err):
			code = fiber.StatusRequestTimeout
		case apperr.IsConnection(err):
			code = fiber.StatusBadGateway
		case errors.Is(err, apperr.ErrNoActiveDatabase):
			code = fiber.StatusConflict
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
