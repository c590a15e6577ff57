// Package app wires the stash components from a Config. The server and the
// CLI share it.
package app

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/engleong-lee/stash/internal/browser"
	"github.com/engleong-lee/stash/internal/config"
	"github.com/engleong-lee/stash/internal/metrics"
	"github.com/engleong-lee/stash/internal/naming"
	"github.com/engleong-lee/stash/internal/router"
	"github.com/engleong-lee/stash/internal/sessions"
	"github.com/engleong-lee/stash/internal/settings"
	"github.com/engleong-lee/stash/internal/store"
	"github.com/engleong-lee/stash/internal/tabs"
)

type App struct {
	DB       *store.DB
	Sessions *sessions.Store
	Settings *settings.Store
	Browser  browser.Browser
	Tabs     *tabs.Adapter
	Ollama   *naming.Ollama
	Claude   *naming.Claude
	Namer    *naming.Coordinator
	Router   *router.Router
	Metrics  *metrics.Metrics
}

// New opens the database and builds every component.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("parse locale: %w", err)
	}

	m := metrics.New()
	sessStore := sessions.NewStore(db)
	settingsStore := settings.NewStore(db)

	b := NewBrowser(cfg, logger)
	adapter := tabs.NewAdapter(b, logger.Named("tabs"))

	ollama := naming.NewOllama(cfg.OllamaBaseURL, settingsStore)
	claude := naming.NewClaude(cfg.ClaudeAPIURL, cfg.ClaudeModel, settingsStore)
	namer := naming.NewCoordinator(settingsStore, ollama, claude, locale, logger.Named("naming"), m)

	return &App{
		DB:       db,
		Sessions: sessStore,
		Settings: settingsStore,
		Browser:  b,
		Tabs:     adapter,
		Ollama:   ollama,
		Claude:   claude,
		Namer:    namer,
		Router:   router.New(sessStore, settingsStore, adapter, namer, logger.Named("router"), m),
		Metrics:  m,
	}, nil
}

// NewBrowser returns the host browser selected by cfg.Browser.
func NewBrowser(cfg *config.Config, logger *zap.Logger) browser.Browser {
	if cfg.Browser == "memory" {
		return browser.NewMemory()
	}
	return browser.NewChrome(cfg.DevToolsURL, logger.Named("chrome"))
}

func (a *App) Close() error {
	return a.DB.Close()
}
