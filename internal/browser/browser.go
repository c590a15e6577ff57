// Package browser abstracts the host browser's window and tab APIs.
package browser

import (
	"context"
	"errors"
)

// WindowID identifies a browser window. Zero means "the current window".
type WindowID int64

// ErrNoWindow is returned when a tab is created in a window that does not exist.
var ErrNoWindow = errors.New("window not found")

// RawTab is a tab as the host reports it. Any field except ID may be empty.
type RawTab struct {
	ID         string
	WindowID   WindowID
	URL        string
	Title      string
	FavIconURL string
	Active     bool
}

// CreateTabOptions describes a tab to open.
type CreateTabOptions struct {
	// WindowID of zero opens the tab in the current window.
	WindowID WindowID
	URL      string
	Active   bool
}

// Browser is the subset of host browser operations stash needs.
type Browser interface {
	// CurrentWindowTabs lists the tabs of the focused window in tab strip order.
	CurrentWindowTabs(ctx context.Context) ([]RawTab, error)
	// CreateWindow opens a window with a single tab loading url.
	CreateWindow(ctx context.Context, url string, focused bool) (WindowID, error)
	// CreateTab opens a tab and returns its ID.
	CreateTab(ctx context.Context, opts CreateTabOptions) (string, error)
	// CloseTabs closes the given tabs. Unknown IDs are ignored.
	CloseTabs(ctx context.Context, ids []string) error
}
