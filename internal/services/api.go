package services

import (
	"context"
	"fmt"
	"time"

	"inpaint/config"
	"inpaint/internal/dependencies"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

type Api struct {
	server *fiber.App
	runner dependencies.Runner

	port           string
	allowedOrigins string
	strictStatus   bool

	modelID  string
	numSteps int
	timeout  time.Duration
}

func NewApi(runner dependencies.Runner, cfg config.Config) *Api {
	if cfg.Api.AllowedOrigins == "" {
		cfg.Api.AllowedOrigins = "*"
	}

	a := &Api{
		runner:         runner,
		port:           cfg.Api.Port,
		allowedOrigins: cfg.Api.AllowedOrigins,
		strictStatus:   cfg.Api.StrictStatusCodes,
		modelID:        cfg.Inference.ModelID,
		numSteps:       cfg.Inference.NumSteps,
		timeout:        cfg.Inference.Timeout(),
	}
	a.server = fiber.New(fiber.Config{
		BodyLimit:             cfg.Api.BodyLimit(),
		DisableStartupMessage: true,
		ErrorHandler:          a.errorHandler,
	})
	a.setup()
	return a
}

func (a *Api) setup() {

	allowCredentials := a.allowedOrigins != "*"

	a.server.Use(fiberrecover.New())
	a.server.Use(RequestLogger())
	a.server.Use(cors.New(cors.Config{
		AllowOrigins:     a.allowedOrigins,
		AllowCredentials: allowCredentials,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,Accept,Origin",
	}))

	a.addRoutes()
}

func (a *Api) addRoutes() {
	a.server.Add("GET", "/health", a.Health())
	a.server.Add("POST", "/", a.Inpaint())
	a.server.Add("POST", "/inpaint", a.Inpaint())
}

// Start blocks until the listener fails or Shutdown is called.
func (a *Api) Start() error {
	log.Info("api listening", "port", a.port, "model", a.modelID, "steps", a.numSteps)
	return a.server.Listen(fmt.Sprint(":", a.port))
}

func (a *Api) Shutdown(ctx context.Context) error {
	return a.server.ShutdownWithContext(ctx)
}
