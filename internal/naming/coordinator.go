package naming

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/engleong-lee/stash/internal/metrics"
	"github.com/engleong-lee/stash/internal/models"
)

// Naming stage outcomes, as logged and counted.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
	OutcomeBlank       = "blank"
	OutcomeDefault     = "default"
	OutcomeDisabled    = "disabled"
)

// Coordinator picks a session name: the preferred provider first, then the
// other one, then the dated default.
type Coordinator struct {
	settings  SettingsSource
	providers map[models.Provider]Provider
	locale    language.Tag
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewCoordinator wires the two providers. m may be nil.
func NewCoordinator(settings SettingsSource, ollama, claude Provider, locale language.Tag, logger *zap.Logger, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		settings: settings,
		providers: map[models.Provider]Provider{
			models.ProviderOllama: ollama,
			models.ProviderClaude: claude,
		},
		locale:  locale,
		now:     time.Now,
		logger:  logger,
		metrics: m,
	}
}

// DefaultName is the fallback name for the current date.
func (c *Coordinator) DefaultName() string {
	return DefaultName(c.now(), c.locale)
}

// Generate returns a name for titles. It never fails: every problem along the
// way ends in the default name.
func (c *Coordinator) Generate(ctx context.Context, titles []string) (name string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("naming panicked", zap.Any("panic", r))
			name = c.fallback()
		}
	}()

	s, err := c.settings.Get(ctx)
	if err != nil {
		c.logger.Warn("read settings for naming", zap.Error(err))
		return c.fallback()
	}
	if !s.AINamingEnabled {
		c.metrics.ObserveNaming("none", OutcomeDisabled)
		return c.DefaultName()
	}

	for _, p := range []models.Provider{s.AIProvider, s.AIProvider.Other()} {
		provider, ok := c.providers[p]
		if !ok || provider == nil {
			continue
		}
		if name, ok := c.try(ctx, provider, titles); ok {
			return name
		}
	}
	return c.fallback()
}

func (c *Coordinator) fallback() string {
	c.metrics.ObserveNaming("none", OutcomeDefault)
	return c.DefaultName()
}

// try runs one stage. A stage that is skipped or fails reports false.
func (c *Coordinator) try(ctx context.Context, p Provider, titles []string) (string, bool) {
	log := c.logger.With(zap.String("provider", p.Name()))

	if !p.CheckAvailable(ctx) {
		log.Debug("naming provider unavailable")
		c.metrics.ObserveNaming(p.Name(), OutcomeUnavailable)
		return "", false
	}

	start := time.Now()
	name, err := p.GenerateName(ctx, titles)
	c.metrics.ObserveProvider(p.Name(), time.Since(start))
	if err != nil {
		log.Warn("naming provider failed", zap.Error(err))
		c.metrics.ObserveNaming(p.Name(), OutcomeFailed)
		return "", false
	}

	name = strings.TrimSpace(name)
	if name == "" {
		log.Debug("naming provider returned a blank name")
		c.metrics.ObserveNaming(p.Name(), OutcomeBlank)
		return "", false
	}

	c.metrics.ObserveNaming(p.Name(), OutcomeOK)
	return name, true
}
