// Command linecached is a volatile in-memory cache daemon speaking a
// newline-delimited text protocol over TCP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"linecached/cache"
	"linecached/internal/config"
	"linecached/internal/janitor"
	"linecached/internal/proto"
	"linecached/internal/server"
	"linecached/internal/sysmem"
	"linecached/metrics/prom"
)

func main() {
	// Informational logs go to stdout; fatal startup errors to stderr.
	errLog := logrus.New()
	errLog.SetOutput(os.Stderr)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		errLog.WithError(err).Error("invalid configuration")
		os.Exit(2)
	}

	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(cfg.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := cache.Options{
		OnEvict: func(key string, _ cache.Value, reason cache.EvictReason) {
			log.WithFields(logrus.Fields{"key": key, "reason": int(reason)}).Trace("evicted")
		},
	}
	if cfg.MetricsAddr != "" {
		opt.Metrics = prom.New(nil, "linecached", "pool",
			prometheus.Labels{"pool": "default"})
	}
	pool := cache.NewPool(opt)

	srv := server.New(cfg.Addr(), proto.NewDispatcher(pool), log)
	jan := janitor.New(pool, sysmem.New(), log, cfg.MemoryLimitMiB)

	log.WithFields(logrus.Fields{
		"addr":        cfg.Addr(),
		"memorylimit": cfg.MemoryLimitMiB,
		"verbosity":   cfg.Verbosity,
	}).Info("starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx) })
	g.Go(func() error { return jan.Run(ctx) })
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, cfg.MetricsAddr) })
	}

	if err := g.Wait(); err != nil {
		errLog.WithError(err).Error("fatal")
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// serveMetrics exposes /metrics for Prometheus scraping until ctx ends.
func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	hs := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		hs.Close()
	}()

	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
