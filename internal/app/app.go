package app

import (
	"context"
	"fmt"
	"time"

	"github.com/riv-viewer/riv/internal/config"
	"github.com/riv-viewer/riv/internal/prefs"
	"github.com/riv-viewer/riv/internal/rivapi"
	"github.com/riv-viewer/riv/internal/state"
	"github.com/riv-viewer/riv/internal/ui"
)

// Options configure the riv application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/riv/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
}

// Run boots the riv TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("preferences ignored", "path", opts.PrefsPath, "error", err)
	}

	client, err := rivapi.NewClient(cfg.APIBind,
		rivapi.WithTimeout(cfg.RequestTimeout),
		rivapi.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init service client: %w", err)
	}
	logger.Info("riv starting", "api", client.BaseURL(), "download_dir", cfg.DownloadDir)

	store := &state.Store{}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	StartPoller(ctx, store, client, interval, logger)

	uiOpts := ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Config:    &cfg,
		Logger:    logger,
		PollTick:  interval,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	}
	err = ui.Run(uiOpts)
	logger.Info("riv stopped", "error", err)
	return err
}
