package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Group runs several managers together: all start, and the first server
// error or a shutdown signal stops them all gracefully.
type Group struct {
	managers []*Manager
	logger   *zap.Logger
}

// NewGroup creates a server group.
func NewGroup(logger *zap.Logger, managers ...*Manager) *Group {
	return &Group{
		managers: managers,
		logger:   logger.With(zap.String("component", "server_group")),
	}
}

// Run starts every manager and blocks until the context is cancelled, a
// SIGINT/SIGTERM arrives, or a server fails. All managers are then shut
// down; the first error wins.
func (g *Group) Run(ctx context.Context) error {
	for _, m := range g.managers {
		if err := m.Start(); err != nil {
			g.shutdownAll(context.Background())
			return err
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egCtx := errgroup.WithContext(runCtx)
	for _, m := range g.managers {
		m := m
		eg.Go(func() error {
			select {
			case err := <-m.Errors():
				return err
			case <-egCtx.Done():
				return nil
			}
		})
	}
	eg.Go(func() error {
		select {
		case sig := <-quit:
			g.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-egCtx.Done():
		}
		return nil
	})

	err := eg.Wait()
	g.shutdownAll(context.Background())
	return err
}

func (g *Group) shutdownAll(ctx context.Context) {
	for _, m := range g.managers {
		if err := m.Shutdown(ctx); err != nil {
			g.logger.Error("shutdown error", zap.String("addr", m.Addr()), zap.Error(err))
		}
	}
}
