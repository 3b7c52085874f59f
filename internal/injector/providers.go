package injector

import (
	"context"

	"github.com/google/wire"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/planetoid/internal/config"
	"github.com/zeusync/planetoid/internal/core/events/bus"
	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/internal/core/sim"
	"github.com/zeusync/planetoid/internal/server"
)

// ProviderSet builds the application from a loaded configuration.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideBus,
	ProvideManager,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

// App is the fully wired server process.
type App struct {
	Config  config.Config
	Logger  *log.Logger
	Manager *sim.Manager
	Server  *server.Server
}

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideManager(cfg config.Config, eventBus bus.EventBus, logger log.Log) (*sim.Manager, func()) {
	m := sim.NewManager(cfg.Simulation.Manager, eventBus, logger)
	return m, m.Close
}

func ProvideServer(cfg config.Config, manager *sim.Manager, logger log.Log) (*server.Server, func()) {
	s := server.NewServer(cfg.Server, cfg.Simulation.Session, manager, logger)
	return s, func() { _ = s.Close() }
}

// Run starts the listeners and the frame loop and blocks until ctx is done
// or one of them fails. The server is stopped before Run returns.
func (a *App) Run(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Manager.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.Server.Stop(stopCtx)
	})
	return g.Wait()
}
