package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Chrome drives a running Chrome through its DevTools endpoint
// (chrome --remote-debugging-port=9222).
//
// Tabs are listed over the HTTP /json/list endpoint. Windows and tabs are
// created and closed with browser-level CDP commands on a short-lived
// connection, so stash never attaches to (and never closes) a user's tab.
//
// CDP cannot open a tab in a specific window. New tabs land in the most
// recently focused window, which after CreateWindow is the new window.
type Chrome struct {
	client *resty.Client
	logger *zap.Logger
}

var _ Browser = (*Chrome)(nil)

// NewChrome creates a Chrome client for the DevTools endpoint at devtoolsURL.
func NewChrome(devtoolsURL string, logger *zap.Logger) *Chrome {
	client := resty.New().
		SetBaseURL(strings.TrimRight(devtoolsURL, "/")).
		SetTimeout(5*time.Second).
		SetHeader("Accept", "application/json")

	return &Chrome{client: client, logger: logger}
}

type devtoolsTarget struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	FaviconURL string `json:"faviconUrl"`
}

type devtoolsVersion struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Version returns the browser product string, e.g. "Chrome/129.0.6668.58".
func (c *Chrome) Version(ctx context.Context) (string, error) {
	v, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return v.Browser, nil
}

func (c *Chrome) version(ctx context.Context) (*devtoolsVersion, error) {
	var v devtoolsVersion
	resp, err := c.client.R().SetContext(ctx).SetResult(&v).Get("/json/version")
	if err != nil {
		return nil, fmt.Errorf("devtools version: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("devtools version: status %d", resp.StatusCode())
	}
	if v.WebSocketDebuggerURL == "" {
		return nil, fmt.Errorf("devtools version: no websocket debugger url")
	}
	return &v, nil
}

func (c *Chrome) pages(ctx context.Context) ([]devtoolsTarget, error) {
	var targets []devtoolsTarget
	resp, err := c.client.R().SetContext(ctx).SetResult(&targets).Get("/json/list")
	if err != nil {
		return nil, fmt.Errorf("devtools list: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("devtools list: status %d", resp.StatusCode())
	}

	pages := targets[:0]
	for _, t := range targets {
		if t.Type == "page" {
			pages = append(pages, t)
		}
	}
	return pages, nil
}

// withBrowser opens a browser-level CDP connection, runs fn with a context
// that executes commands on it, then closes the connection.
func (c *Chrome) withBrowser(ctx context.Context, fn func(ctx context.Context) error) error {
	v, err := c.version(ctx)
	if err != nil {
		return err
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	b, err := chromedp.NewBrowser(connCtx, v.WebSocketDebuggerURL)
	if err != nil {
		return fmt.Errorf("connect devtools: %w", err)
	}
	return fn(cdp.WithExecutor(connCtx, b))
}

// CurrentWindowTabs returns the page targets that share a window with the
// first listed page. DevTools lists the most recently active page first.
func (c *Chrome) CurrentWindowTabs(ctx context.Context) ([]RawTab, error) {
	pages, err := c.pages(ctx)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return []RawTab{}, nil
	}

	var tabs []RawTab
	err = c.withBrowser(ctx, func(ctx context.Context) error {
		var current cdpbrowser.WindowID
		for i, p := range pages {
			win, _, err := cdpbrowser.GetWindowForTarget().WithTargetID(target.ID(p.ID)).Do(ctx)
			if err != nil {
				c.logger.Debug("window lookup failed", zap.String("target", p.ID), zap.Error(err))
				continue
			}
			if i == 0 {
				current = win
			}
			if win != current {
				continue
			}
			tabs = append(tabs, RawTab{
				ID:         p.ID,
				WindowID:   WindowID(win),
				URL:        p.URL,
				Title:      p.Title,
				FavIconURL: p.FaviconURL,
				Active:     i == 0,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tabs, nil
}

func (c *Chrome) CreateWindow(ctx context.Context, url string, focused bool) (WindowID, error) {
	var id WindowID
	err := c.withBrowser(ctx, func(ctx context.Context) error {
		targetID, err := target.CreateTarget(url).
			WithNewWindow(true).
			WithBackground(!focused).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("create window: %w", err)
		}

		win, _, err := cdpbrowser.GetWindowForTarget().WithTargetID(targetID).Do(ctx)
		if err != nil {
			return fmt.Errorf("window for target %s: %w", targetID, err)
		}
		id = WindowID(win)
		return nil
	})
	return id, err
}

func (c *Chrome) CreateTab(ctx context.Context, opts CreateTabOptions) (string, error) {
	var id string
	err := c.withBrowser(ctx, func(ctx context.Context) error {
		targetID, err := target.CreateTarget(opts.URL).
			WithBackground(!opts.Active).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("create tab: %w", err)
		}
		id = string(targetID)
		return nil
	})
	return id, err
}

func (c *Chrome) CloseTabs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.withBrowser(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := target.CloseTarget(target.ID(id)).Do(ctx); err != nil {
				c.logger.Warn("close tab failed", zap.String("target", id), zap.Error(err))
			}
		}
		return nil
	})
}
