package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskmaster/internal/app"
	"github.com/Joseda-hg/taskmaster/internal/config"
	"github.com/Joseda-hg/taskmaster/internal/db"
	"github.com/Joseda-hg/taskmaster/internal/kvstore"
	"github.com/Joseda-hg/taskmaster/internal/model"
	"github.com/Joseda-hg/taskmaster/internal/query"
)

// environment is what every command needs once flags and config are settled.
type environment struct {
	cfg   config.Config
	state *app.State
	close func()
}

func setup(ctx context.Context, opts *rootOptions) (*environment, error) {
	cfgPath, err := resolveConfigPath(opts.configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "taskmaster.db")
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(filepath.Dir(cfgPath), "taskmaster.log")
	}
	if opts.web {
		cfg.WebEnabled = true
	}
	if opts.port != 0 {
		cfg.WebPort = opts.port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, err
	}

	logFile, err := configureLogging(cfg)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		_ = logFile.Close()
		return nil, err
	}

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		log.WithError(err).WithField("locale", cfg.Locale).Warn("unknown locale, using English")
		locale = language.English
	}

	state := app.Open(ctx, store,
		app.WithEngine(query.New(query.WithLocale(locale))),
		app.WithFilter(model.FilterSpec{SortBy: cfg.DefaultSort}),
	)

	return &environment{
		cfg:   cfg,
		state: state,
		close: func() {
			if err := closeStore(); err != nil {
				log.WithError(err).Warn("close store")
			}
			_ = logFile.Close()
		},
	}, nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// configureLogging sends logs to the configured file; the terminal belongs to
// the TUI.
func configureLogging(cfg config.Config) (io.Closer, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	log.SetLevel(level)

	if err := config.EnsureDir(cfg.LogPath); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(file)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return file, nil
}

func openStore(ctx context.Context, cfg config.Config) (app.Persister, func() error, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		store, err := kvstore.Dial(ctx, cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("key", cfg.RedisKey).Info("using redis storage")
		return store, store.Close, nil
	default:
		if err := config.EnsureDir(cfg.DBPath); err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.DBPath).Info("using sqlite storage")
		return db.NewStore(sqlDB), sqlDB.Close, nil
	}
}
