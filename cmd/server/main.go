package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"inpaint/config"
	"inpaint/internal/mediator"

	"github.com/TypeTerrors/gonfig"
	"github.com/charmbracelet/log"
)

func main() {

	cfg, err := gonfig.Load[config.Config](
		gonfig.WithConfigFile("config/config.yaml"),
		gonfig.WithDotenv(".env"), // ignored if missing
		gonfig.WithStrict(),       // fail if ${VAR} has no value/default
	)
	if err != nil {
		log.Fatal("load config", "err", err)
	}

	app, err := mediator.NewApp(cfg)
	if err != nil {
		log.Fatal("create app", "err", err)
	}
	defer app.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		stop()
		app.Shutdown()
		log.Fatal("server stopped", "err", err)
	}
}
