package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaswdr/faker"
	"github.com/peterh/liner"

	"emprec/internal/app"
	"emprec/internal/app/router"
	"emprec/internal/app/shell"
	"emprec/internal/platform/config"
	"emprec/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	gen := faker.New()
	a.SeedDemo(gen, time.Now())

	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)

	sh := shell.New(shell.Config{
		Store:     a.Store,
		Localizer: a.Localizer,
		In:        l,
		Out:       os.Stdout,
		ExportDir: cfg.ExportDir,
		DemoExtra: cfg.DemoExtraRecords,
		Faker:     gen,
		Logger:    logger,
	})
	l.SetCompleter(sh.Complete)

	rt := a.NewRouter(router.NewMemoryHistory(router.PathList), sh.View)
	sh.Attach(rt)
	rt.Start()
	defer rt.Stop()

	return sh.Run(ctx)
}
