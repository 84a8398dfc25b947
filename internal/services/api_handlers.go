package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"inpaint/internal/dependencies"
	"inpaint/types"
	"inpaint/utils"

	"github.com/gofiber/fiber/v2"
)

func (a *Api) Health() fiber.Handler {
	return func(ctx *fiber.Ctx) error {

		return ctx.Status(fiber.StatusOK).JSON(types.HealthResponse{
			Status:    fiber.StatusOK,
			TimeStamp: time.Now().Unix(),
		})
	}
}

func (a *Api) Inpaint() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("inpaint", ctx)

		out, err := a.inpaint(ctx.UserContext(), ctx.Body())
		if err != nil {
			logger.Error("inpaint failed", "err", err)
			return a.sendError(ctx, err)
		}

		body, err := json.Marshal(types.InpaintResponse{
			OutputImage: base64.StdEncoding.EncodeToString(out),
		})
		if err != nil {
			return a.sendError(ctx, failure(ErrEncode, err))
		}

		logger.Info("inpaint completed", "outputBytes", len(out))
		ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return ctx.Status(fiber.StatusOK).Send(body)
	}
}

// inpaint runs one request end to end and returns the raw output image.
func (a *Api) inpaint(parent context.Context, raw []byte) ([]byte, error) {
	var req types.InpaintRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, failure(ErrMalformedInput, err)
	}
	if err := requireFields(req); err != nil {
		return nil, failure(ErrMalformedInput, err)
	}

	image, err := utils.DecodeBase64(*req.Image)
	if err != nil {
		return nil, failure(ErrDecode, fmt.Errorf("image: %w", err))
	}
	mask, err := utils.DecodeBase64(*req.Mask)
	if err != nil {
		return nil, failure(ErrDecode, fmt.Errorf("mask: %w", err))
	}

	input := dependencies.Input{
		Prompt:   *req.Prompt,
		Image:    dependencies.Blob{Body: image, ContentType: dependencies.ContentTypePNG},
		Mask:     dependencies.Blob{Body: mask, ContentType: dependencies.ContentTypePNG},
		NumSteps: a.numSteps,
	}

	ctx := parent
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, a.timeout)
		defer cancel()
	}

	res, err := a.runner.Run(ctx, a.modelID, input)
	if err != nil {
		return nil, failure(ErrBackend, err)
	}
	if res == nil || res.Image == nil {
		return nil, failure(ErrBackend, errors.New("no output image"))
	}
	defer res.Image.Close()

	out, err := io.ReadAll(res.Image)
	if err != nil {
		return nil, failure(ErrBackend, fmt.Errorf("read output: %w", err))
	}
	if len(out) == 0 {
		return nil, failure(ErrBackend, errors.New("empty output image"))
	}
	return out, nil
}

func requireFields(req types.InpaintRequest) error {
	switch {
	case req.Image == nil:
		return errors.New(`missing field "image"`)
	case req.Mask == nil:
		return errors.New(`missing field "mask"`)
	case req.Prompt == nil:
		return errors.New(`missing field "prompt"`)
	}
	return nil
}
