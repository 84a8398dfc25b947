package mediator

import (
	"context"
	"fmt"
	"time"

	"inpaint/config"
	"inpaint/internal/clients/workersai"
	"inpaint/internal/dependencies"
	"inpaint/internal/services"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 10 * time.Second

type App struct {
	api *services.Api
	rpc *dependencies.Rpc
	// settings
	Config *config.Config
}

func NewApp(cfg config.Config) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warn("unknown log level, keeping default", "level", cfg.Log.Level)
	}

	app := &App{Config: &cfg}

	runner, err := app.newRunner(cfg.Inference)
	if err != nil {
		return nil, fmt.Errorf("error creating newapp: %w", err)
	}

	app.api = services.NewApi(runner, cfg)
	return app, nil
}

func (a *App) newRunner(cfg config.InferenceConfig) (dependencies.Runner, error) {
	switch cfg.Backend {
	case config.BackendRpc:
		rpc, err := dependencies.NewRpc(cfg)
		if err != nil {
			return nil, err
		}
		a.rpc = rpc
		log.Info("inference backend", "kind", "grpc", "peer", cfg.Rpc.Peer, "port", cfg.Rpc.Port, "method", cfg.Rpc.Method)
		return rpc, nil

	case config.BackendWorkersAI:
		client := workersai.NewClient(cfg.WorkersAI, cfg.Timeout())
		if cfg.WorkersAI.VerifyToken {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
			defer cancel()
			if err := client.VerifyToken(ctx); err != nil {
				return nil, err
			}
		}
		log.Info("inference backend", "kind", "workersai", "account", cfg.WorkersAI.AccountID)
		return client, nil
	}

	return nil, fmt.Errorf("unknown inference backend %q", cfg.Backend)
}

// Start serves until ctx is cancelled or the listener fails.
func (a *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.api.Start)
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		log.Info("shutting down api")
		return a.api.Shutdown(sctx)
	})

	return g.Wait()
}

func (a *App) Shutdown() {
	if a.rpc != nil {
		a.rpc.Close()
	}
}
