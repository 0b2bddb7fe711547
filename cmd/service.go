package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kilianp07/gridmon/app"
	"github.com/kilianp07/gridmon/config"
	"github.com/kilianp07/gridmon/infra/logger"
)

// interruptible returns a context cancelled on SIGINT or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig reads the file named by --config and applies adjust, if any,
// on top of it.
func loadConfig(adjust func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if adjust != nil {
		adjust(cfg)
	}
	return cfg, nil
}

// openService builds the service from cfg. The returned release closes it
// and logs close errors under the given component name.
func openService(name string, cfg *config.Config) (*app.Service, func(), error) {
	svc, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := svc.Close(); err != nil {
			logger.New(name).Errorf("service close: %v", err)
		}
	}
	return svc, release, nil
}
