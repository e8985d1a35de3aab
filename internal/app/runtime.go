package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/neowatch/internal/approach"
	"github.com/samvad-hq/neowatch/internal/config"
	"github.com/samvad-hq/neowatch/internal/logger"
	"github.com/samvad-hq/neowatch/internal/storage"
	"github.com/samvad-hq/neowatch/pkg/httpclient"
	"github.com/samvad-hq/neowatch/pkg/neows"
	"github.com/samvad-hq/neowatch/pkg/publishers"
)

// New builds a Pipeline from configuration: feed client, preference store,
// presenter and report sinks. Callers must Close it.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log = logger.Ensure(log)

	presenter, err := approach.NewPresenter(cfg.DisplayLocale)
	if err != nil {
		return nil, fmt.Errorf("init presenter: %w", err)
	}

	feed := neows.NewClient(neows.Options{
		BaseURL:     cfg.NeoBaseURL,
		APIKey:      cfg.NeoAPIKey,
		UserAgent:   cfg.NeoUserAgent,
		WindowDays:  cfg.WindowDays,
		Timeout:     cfg.FetchTimeout,
		MinInterval: cfg.MinInterval,
		HTTPClient:  httpclient.NewRestyClient(0),
		Log:         log,
	})

	store, err := storage.NewStore(cfg.PrefsType, cfg.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("init preference store: %w", err)
	}
	log.InfoObj("preference store initialized", "storage_config", map[string]any{
		"type": cfg.PrefsType,
		"path": cfg.PrefsPath,
	})

	sinks, err := publishers.Open(ctx, cfg.PublishersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init report sinks: %w", err)
	}
	if sinks.Size() > 0 {
		log.InfoObj("report sinks loaded", "publishers_meta", map[string]any{
			"file":  cfg.PublishersFile,
			"count": sinks.Size(),
		})
	}

	p, err := NewPipeline(Deps{
		Feed:           feed,
		Store:          store,
		Presenter:      presenter,
		Sink:           sinks,
		MaxRows:        cfg.MaxRows,
		Source:         cfg.AppName,
		Log:            log,
		PublishTimeout: cfg.PublishTimeout,
	})
	if err != nil {
		_ = sinks.Close()
		_ = store.Close()
		return nil, err
	}
	p.closers = append(p.closers, store.Close, sinks.Close)
	return p, nil
}
