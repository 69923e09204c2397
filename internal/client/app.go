// Package client assembles the autosave engine, the background flush job and
// the host-signal plumbing into a runnable application.
package client

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/internal/service"
	"github.com/rmura/formsync/internal/workers"
)

// App runs the engine until interrupted. Host-level events arrive as signals:
// SIGHUP triggers an immediate save, SIGUSR1 stands in for the
// network-restored event and flushes the backlog.
type App struct {
	engine *service.Engine
	job    workers.FlushJob
	log    *logger.Logger
}

// NewApp wires the application.
func NewApp(engine *service.Engine, job workers.FlushJob, log *logger.Logger) *App {
	return &App{engine: engine, job: job, log: log}
}

// Run performs a startup save, starts the auto-flush job, and processes
// signals until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx := context.Background()

	if a.engine.IsEnabled() {
		res := a.engine.SaveNowDetailed(ctx, "startup")
		a.log.Info().
			Bool("ok", res.OK).
			Str("reason", string(res.Reason)).
			Bool("queued", res.Queued).
			Msg("startup save")
	} else {
		a.log.Warn().Msg("sync disabled, running inert")
	}

	a.job.Start(ctx)
	defer a.job.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(sigs)

	for sig := range sigs {
		switch sig {
		case syscall.SIGHUP:
			a.engine.Schedule("manual")
		case syscall.SIGUSR1:
			a.engine.NotifyOnline(ctx)
		default:
			a.log.Info().Str("signal", sig.String()).Msg("shutting down")
			return nil
		}
	}

	return nil
}
