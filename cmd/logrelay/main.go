package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/matst80/logrelay/internal/mirror"
	"github.com/matst80/logrelay/internal/obs"
	"github.com/matst80/logrelay/internal/relay"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseConfig(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		obs.Error("config", obs.Fields{"err": err.Error()})
		return 2
	}
	if !obs.SetLevel(cfg.LogLevel) {
		obs.Warn("config.log_level", obs.Fields{"level": cfg.LogLevel, "using": "info"})
	}
	if cfg.Debug {
		obs.EnableDebug(true)
	}
	obs.Info("logrelay.start", obs.Fields{"addr": cfg.Addr(), "retry_delay": cfg.RetryDelay.String(), "metrics": cfg.MetricsAddr, "redis": cfg.RedisAddr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := relay.Options{
		Addr:        cfg.Addr(),
		RetryDelay:  cfg.RetryDelay,
		ReadTimeout: cfg.ReadTimeout,
		DialTimeout: cfg.DialTimeout,
		Out:         os.Stdout,
	}
	if cfg.RedisAddr != "" {
		m, err := mirror.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisChannel)
		if err != nil {
			obs.Error("mirror.redis", obs.Fields{"err": err.Error(), "addr": cfg.RedisAddr})
			return 1
		}
		defer m.Close()
		opts.Mirror = m
	}

	r := relay.New(opts)
	if cfg.MetricsAddr != "" {
		go startMetricsServer(ctx, cfg.MetricsAddr, r)
	}

	if err := r.Run(ctx); err != nil {
		return 1
	}
	obs.Info("logrelay.shutdown", obs.Fields{})
	return 0
}
