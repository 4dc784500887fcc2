package config

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/talx-hub/gopher-users/internal/model"
)

type Config struct {
	RunAddr         string        `env:"RUN_ADDRESS"      envDefault:"localhost:8080"`
	DatabaseURI     string        `env:"DATABASE_URI"     envDefault:"sqlite://users.db"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	MaxInFlight     uint64        `env:"MAX_IN_FLIGHT"    envDefault:"100"`
}

type Builder struct {
	cfg *Config
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{
			RunAddr:         "",
			DatabaseURI:     "",
			LogLevel:        "",
			ShutdownTimeout: 0,
			MaxInFlight:     0,
		},
		log: log,
	}
}

// FromDotEnv loads variables from the given files into the process
// environment. Variables that are already set are left untouched and a
// missing file is not an error.
func (b *Builder) FromDotEnv(filenames ...string) *Builder {
	for _, name := range filenames {
		err := godotenv.Load(name)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		b.log.LogAttrs(context.Background(),
			slog.LevelWarn, "Failed to load dotenv file",
			slog.String("file", name),
			slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromFlags() *Builder {
	return b.fromFlagSet(flag.CommandLine, os.Args[1:])
}

func (b *Builder) fromFlagSet(flags *flag.FlagSet, args []string) *Builder {
	flags.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	flags.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	flags.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")
	flags.DurationVar(&b.cfg.ShutdownTimeout, "t", b.cfg.ShutdownTimeout, "Shutdown timeout")
	flags.Uint64Var(&b.cfg.MaxInFlight, "c", b.cfg.MaxInFlight, "Max requests in flight, 0 disables the cap")

	if err := flags.Parse(args); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse flags", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) GetConfig() *Config {
	return b.cfg
}
