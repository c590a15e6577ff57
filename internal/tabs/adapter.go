// Package tabs converts between host browser tabs and saved session tabs.
package tabs

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/engleong-lee/stash/internal/browser"
	"github.com/engleong-lee/stash/internal/models"
)

// UntitledTitle is used for tabs the host reports without a title.
const UntitledTitle = "Untitled"

// newTabURL is opened to keep the window alive when its tabs are closed.
const newTabURL = "chrome://newtab/"

var internalSchemes = []string{
	"chrome://",
	"chrome-extension://",
	"devtools://",
	"edge://",
	"about:",
}

// IsInternalURL reports whether url uses a reserved browser scheme. Such tabs
// are never captured or closed.
func IsInternalURL(url string) bool {
	for _, scheme := range internalSchemes {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

// Adapter captures and restores tabs through a Browser.
type Adapter struct {
	browser browser.Browser
	logger  *zap.Logger
}

func NewAdapter(b browser.Browser, logger *zap.Logger) *Adapter {
	return &Adapter{browser: b, logger: logger}
}

// CaptureCurrentWindow returns the saveable tabs of the focused window in tab
// strip order.
func (a *Adapter) CaptureCurrentWindow(ctx context.Context) ([]models.Tab, error) {
	raw, err := a.browser.CurrentWindowTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("query current window: %w", err)
	}

	tabs := make([]models.Tab, 0, len(raw))
	for _, t := range raw {
		if t.URL == "" || IsInternalURL(t.URL) {
			continue
		}
		title := t.Title
		if title == "" {
			title = UntitledTitle
		}
		tabs = append(tabs, models.Tab{
			URL:     t.URL,
			Title:   title,
			Favicon: t.FavIconURL,
		})
	}
	return tabs, nil
}

// Restore reopens tabs. With newWindow the first tab opens a new focused
// window and the rest open in it in the background. Otherwise every tab opens
// in the current window and only the first is activated. The tabs after the
// first are created concurrently, so their final order is up to the host.
func (a *Adapter) Restore(ctx context.Context, tabs []models.Tab, newWindow bool) error {
	if len(tabs) == 0 {
		return nil
	}

	if newWindow {
		win, err := a.browser.CreateWindow(ctx, tabs[0].URL, true)
		if err != nil {
			return fmt.Errorf("create window: %w", err)
		}
		return a.openAll(ctx, tabs[1:], func(int) browser.CreateTabOptions {
			return browser.CreateTabOptions{WindowID: win, Active: false}
		})
	}

	return a.openAll(ctx, tabs, func(i int) browser.CreateTabOptions {
		return browser.CreateTabOptions{Active: i == 0}
	})
}

func (a *Adapter) openAll(ctx context.Context, tabs []models.Tab, opts func(i int) browser.CreateTabOptions) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, tab := range tabs {
		o := opts(i)
		o.URL = tab.URL
		g.Go(func() error {
			if _, err := a.browser.CreateTab(gctx, o); err != nil {
				return fmt.Errorf("open %s: %w", o.URL, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// CloseSaved closes the tabs of the focused window whose URL appears in saved,
// after opening a blank tab so the window stays open. Internal tabs and tabs
// left out of saved are never closed. It does nothing when no tab matches.
func (a *Adapter) CloseSaved(ctx context.Context, saved []models.Tab) error {
	if len(saved) == 0 {
		return nil
	}

	urls := make(map[string]struct{}, len(saved))
	for _, t := range saved {
		urls[t.URL] = struct{}{}
	}

	raw, err := a.browser.CurrentWindowTabs(ctx)
	if err != nil {
		return fmt.Errorf("query current window: %w", err)
	}

	var ids []string
	for _, t := range raw {
		if _, ok := urls[t.URL]; ok && t.ID != "" && !IsInternalURL(t.URL) {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := a.browser.CreateTab(ctx, browser.CreateTabOptions{URL: newTabURL, Active: true}); err != nil {
		return fmt.Errorf("open blank tab: %w", err)
	}
	if err := a.browser.CloseTabs(ctx, ids); err != nil {
		return fmt.Errorf("close tabs: %w", err)
	}

	a.logger.Debug("closed saved tabs", zap.Int("count", len(ids)))
	return nil
}
