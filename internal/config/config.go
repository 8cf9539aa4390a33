package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	SourceCLI = "cli"
	SourceAPI = "api"
)

// reservedPaths are routes the exporter registers besides the metrics path.
var reservedPaths = []string{"/healthz", "/readyz", "/api/scrapes", "/api/scrapes/summary"}

type Config struct {
	Addr          string
	MetricsPath   string
	Source        string
	DockerBin     string
	DockerHost    string
	SourceTimeout time.Duration
	Journal       bool
	DataDir       string
	DBPath        string
	RetentionDays int
	LogLevel      string
}

// Load reads the environment and then lets command-line flags in args
// override it.
func Load(args []string) (Config, error) {
	dataDir := getenv("DOCKSTATS_DATA_DIR", "./data")
	cfg := Config{
		Addr:          getenv("DOCKSTATS_ADDR", "0.0.0.0:3069"),
		MetricsPath:   getenv("DOCKSTATS_METRICS_PATH", "/docker-stats/metrics"),
		Source:        getenv("DOCKSTATS_SOURCE", SourceCLI),
		DockerBin:     getenv("DOCKSTATS_DOCKER_BIN", "docker"),
		DockerHost:    getenv("DOCKER_HOST", "unix:///var/run/docker.sock"),
		SourceTimeout: getenvDuration("DOCKSTATS_SOURCE_TIMEOUT", 30*time.Second),
		Journal:       getenvBool("DOCKSTATS_JOURNAL", true),
		DataDir:       dataDir,
		DBPath:        os.Getenv("DOCKSTATS_DB_PATH"),
		RetentionDays: getenvInt("DOCKSTATS_RETENTION_DAYS", 7),
		LogLevel:      getenv("DOCKSTATS_LOG_LEVEL", "info"),
	}

	fs := pflag.NewFlagSet("dockstats", pflag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.MetricsPath, "metrics-path", cfg.MetricsPath, "route serving container metrics")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "stats source: cli or api")
	fs.StringVar(&cfg.DockerBin, "docker-bin", cfg.DockerBin, "docker binary used by the cli source")
	fs.StringVar(&cfg.DockerHost, "docker-host", cfg.DockerHost, "engine endpoint used by the api source")
	fs.DurationVar(&cfg.SourceTimeout, "source-timeout", cfg.SourceTimeout, "bound on one stats read")
	fs.BoolVar(&cfg.Journal, "journal", cfg.Journal, "record scrapes in a sqlite journal")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the journal")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "journal file (default <data-dir>/scrapes.db)")
	fs.IntVar(&cfg.RetentionDays, "retention-days", cfg.RetentionDays, "days of journal to keep")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "scrapes.db")
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Source != SourceCLI && c.Source != SourceAPI {
		return fmt.Errorf("unknown source %q, want %s or %s", c.Source, SourceCLI, SourceAPI)
	}
	if c.SourceTimeout <= 0 {
		return fmt.Errorf("invalid source timeout: %v, must be positive", c.SourceTimeout)
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics path %q must start with /", c.MetricsPath)
	}
	if strings.ContainsAny(c.MetricsPath, " \t{}") {
		return fmt.Errorf("metrics path %q must not contain spaces or braces", c.MetricsPath)
	}
	for _, p := range reservedPaths {
		if c.MetricsPath == p {
			return fmt.Errorf("metrics path %q is already served by the exporter", c.MetricsPath)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func getenvDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return dur
}

func getenvBool(k string, d bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(k)))
	if v == "" {
		return d
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	return d
}
