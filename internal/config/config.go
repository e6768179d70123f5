// Package config loads daemon configuration from command-line flags with
// environment-variable overrides.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Defaults applied when neither flag nor environment supplies a value.
const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 11311
	DefaultMemoryLimitMiB = 64
	DefaultVerbosity      = 1
)

// Config is the resolved startup configuration.
type Config struct {
	Host           string
	Port           int
	MemoryLimitMiB int
	Verbosity      int
	MetricsAddr    string
}

// Load parses args (without the program name). Environment variables
// LINECACHED_HOST, LINECACHED_PORT, LINECACHED_MEMORYLIMIT,
// LINECACHED_VERBOSITY and LINECACHED_METRICS provide defaults that flags
// override.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("linecached", flag.ContinueOnError)

	host := fs.String("host", envStr("LINECACHED_HOST", DefaultHost), "bind address")
	port := fs.Int("port", envInt("LINECACHED_PORT", DefaultPort), "TCP port")
	limit := fs.Int("memorylimit", envInt("LINECACHED_MEMORYLIMIT", DefaultMemoryLimitMiB),
		"hard memory cap in MiB; 75% of it is the soft cap")
	verbosity := fs.Int("verbosity", envInt("LINECACHED_VERBOSITY", DefaultVerbosity),
		"log verbosity 0..3")
	metrics := fs.String("metrics", envStr("LINECACHED_METRICS", ""),
		"serve Prometheus metrics at addr (e.g. :9321); empty = disabled")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Host:           *host,
		Port:           *port,
		MemoryLimitMiB: *limit,
		Verbosity:      *verbosity,
		MetricsAddr:    *metrics,
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.MemoryLimitMiB < 1 {
		return Config{}, fmt.Errorf("memorylimit must be at least 1 MiB, got %d", cfg.MemoryLimitMiB)
	}
	if cfg.Verbosity < 0 || cfg.Verbosity > 3 {
		return Config{}, fmt.Errorf("verbosity %d out of range 0..3", cfg.Verbosity)
	}
	return cfg, nil
}

// Addr returns the host:port to bind.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LogLevel maps the 0..3 verbosity onto logrus levels. Level 1 shows
// evictions, level 2 adds usage/item-count ticks, level 3 traces
// individual entries.
func (c Config) LogLevel() logrus.Level {
	switch c.Verbosity {
	case 0:
		return logrus.WarnLevel
	case 1:
		return logrus.InfoLevel
	case 2:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func envStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
