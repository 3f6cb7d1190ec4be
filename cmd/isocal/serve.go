package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"isocal/internal/config"
	appLog "isocal/internal/log"
	"isocal/internal/web"
)

const defaultConfigPath = "/etc/isocal/config.yaml"

// serveFlags holds CLI flag values for serve.
type serveFlags struct {
	configPath string
	listen     string
}

// loadConfig loads the config file and applies its log level.
func loadConfig(path string) (*config.Config, error) {
	conf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if lvl, err := appLog.ParseLevel(conf.LogLevel); err == nil {
		appLog.SetLevel(lvl)
	} else {
		appLog.Warn("ignoring log_level", "value", conf.LogLevel)
	}
	return conf, nil
}

func runEvents(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	days := fs.Int("days", 0, "Future days to include (default: horizon_days)")
	backfill := fs.Int("backfill", -1, "Past days to include (default: backfill_days)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *days <= 0 {
		*days = conf.HorizonDays
	}
	if *backfill < 0 {
		*backfill = conf.BackfillDays
	}

	s, err := web.NewServer(conf, nil)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	resp, err := s.Events(ctx, *days, *backfill)
	if err != nil {
		return err
	}
	return writeJSON(stdout, resp)
}

func runServe(args []string) error {
	var flags serveFlags
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&flags.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&flags.listen, "listen", "", "HTTP listen address (overrides config if set)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	appLog.Info("isocal starting", "version", version)

	conf, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"backfill_days", conf.BackfillDays,
		"ics_count", len(conf.ICS),
	)

	s, err := web.NewServer(conf, nil)
	if err != nil {
		return err
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	loc, err := conf.Location()
	if err != nil {
		return err
	}
	sched := cron.New(cron.WithLocation(loc))
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		if err := s.Refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", conf.RefreshCron, err)
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	go func() {
		if err := s.Refresh(ctx); err != nil {
			appLog.Error("initial refresh failed", err)
		}
	}()

	srv := &http.Server{
		Addr:              conf.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("HTTP server listening", "listen", "http://"+conf.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	appLog.Info("isocal exiting")
	return nil
}
