// Package cmd is the main() skeleton shared by the binaries.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	coreconfig "github.com/examscores/scorebot/core/config"
	"github.com/examscores/scorebot/core/logger"
)

// ConfigCarrier is a loaded binary config that embeds the core config.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// App runs until ctx is done.
type App interface {
	Run(ctx context.Context) error
}

// AppFunc adapts a plain function to App.
type AppFunc func(ctx context.Context) error

// Run calls f.
func (f AppFunc) Run(ctx context.Context) error { return f(ctx) }

// Options describe where the config comes from and how the app is built.
type Options struct {
	// ConfigEnvVar names the variable holding the config path. Defaults to CONFIG_PATH.
	ConfigEnvVar      string
	DefaultConfigPath string
	// EnvFile is loaded into the environment before the config when it exists. Defaults to .env.
	EnvFile string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (App, error)

	ShutdownLogger func() error
	// Signals replaces SIGINT and SIGTERM as the stop signals.
	Signals []os.Signal
}

func (o Options) configPath() (string, error) {
	env := o.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	if p := os.Getenv(env); p != "" {
		return p, nil
	}
	if o.DefaultConfigPath != "" {
		return o.DefaultConfigPath, nil
	}
	return "", fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
}

func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cmd: failed to load %s: %w", path, err)
	}
	return nil
}

// Run loads the config, bootstraps the app and runs it until a stop signal.
// A run that ends with context.Canceled counts as a clean stop.
func Run(opts Options) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return errors.New("cmd: LoadConfig and Bootstrap are required")
	}
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return err
	}
	path, err := opts.configPath()
	if err != nil {
		return err
	}

	start := time.Now()
	log.Printf("loading config: %s", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	if cfg == nil || cfg.CoreConfig() == nil {
		return errors.New("cmd: loaded config is missing core configuration")
	}

	app, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	shutdown := opts.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	defer func() {
		if err := shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	appLog := logger.Component("app")
	appLog.Info("app ready",
		slog.String("event", "ready"),
		slog.Duration("startup_duration", logger.Took(start)),
	)
	runErr := app.Run(ctx)
	appLog.Info("shutting down",
		slog.String("event", "shutdown"),
	)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
