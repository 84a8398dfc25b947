package services

import (
	"regexp"
	"strings"
	"time"

	"inpaint/utils"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const reqIDKey = "reqId"

var validReqID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// RequestLogger tags each request with an ID, reusing one set by an upstream
// proxy when present.
func RequestLogger() fiber.Handler {
	base := log.With("component", "http")

	return func(c *fiber.Ctx) error {
		reqID := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if !validReqID.MatchString(reqID) {
			reqID = utils.NewRequestID()
		}
		c.Locals(reqIDKey, reqID)
		c.Set(fiber.HeaderXRequestID, reqID)

		start := time.Now()
		path := c.Path()
		method := c.Method()

		base.Debug("request started", "reqId", reqID, "method", method, "path", path, "ip", c.IP(), "bytesIn", len(c.Body()))

		err := c.Next()
		dur := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			base.Error("request failed", "reqId", reqID, "method", method, "path", path, "status", status, "dur", dur.String(), "err", err)
			return err
		}

		logFn := base.Info
		if status >= fiber.StatusInternalServerError {
			logFn = base.Warn
		}
		logFn("request completed", "reqId", reqID, "method", method, "path", path, "status", status, "dur", dur.String(), "bytesOut", len(c.Response().Body()))
		return nil
	}
}

func ReqID(c *fiber.Ctx) string {
	if v := c.Locals(reqIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func HttpLogger(action string, c *fiber.Ctx) *log.Logger {
	return log.With(
		"component", "api",
		"action", action,
		"reqId", ReqID(c),
		"method", c.Method(),
		"path", c.Path(),
	)
}
