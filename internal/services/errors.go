package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Failure kinds. Every error leaving inpaint wraps exactly one of them.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrDecode         = errors.New("decode failure")
	ErrBackend        = errors.New("backend failure")
	ErrEncode         = errors.New("encode failure")
)

func failure(kind error, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

// statusFor returns 500 for everything unless strict mapping is enabled.
func statusFor(err error, strict bool) int {
	if !strict {
		return fiber.StatusInternalServerError
	}
	switch {
	case errors.Is(err, ErrMalformedInput), errors.Is(err, ErrDecode):
		return fiber.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, ErrBackend):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (a *Api) sendError(ctx *fiber.Ctx, err error) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.Status(statusFor(err, a.strictStatus)).SendString("Error: " + err.Error())
}

// errorHandler catches what escapes the handlers: recovered panics, oversize
// bodies and unmatched routes. Route misses keep their 404/405.
func (a *Api) errorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return ctx.Status(fe.Code).SendString("Error: " + fe.Message)
		}
		if fe.Code < fiber.StatusInternalServerError {
			return a.sendError(ctx, failure(ErrMalformedInput, err))
		}
	}
	return a.sendError(ctx, fmt.Errorf("internal error: %w", err))
}
