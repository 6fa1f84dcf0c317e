// Package bootstrap wires the application components and manages their lifecycle.
package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// App runs a long-lived function and calls shutdown hooks when it is interrupted.
type App struct {
	mu    sync.Mutex
	hooks []func(ctx context.Context) error
}

func New() *App {
	return &App{}
}

// AddShutdownHook registers fn to run on shutdown. Hooks run in reverse registration order.
func (a *App) AddShutdownHook(fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

// Run calls run with a context cancelled on SIGINT or SIGTERM.
// If run returns first its error is returned and the hooks still run.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	return errors.Join(runErr, a.Shutdown(context.Background()))
}

// Shutdown runs and clears the registered hooks.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
