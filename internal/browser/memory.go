package browser

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-process Browser. It backs tests and the "memory" browser
// mode of the server, where no real browser is attached.
type Memory struct {
	mu         sync.Mutex
	windows    map[WindowID][]RawTab
	order      []WindowID
	current    WindowID
	nextWindow WindowID
	nextTab    int
}

var _ Browser = (*Memory)(nil)

// NewMemory returns a browser with one empty, focused window.
func NewMemory() *Memory {
	m := &Memory{windows: make(map[WindowID][]RawTab)}
	m.current = m.newWindowLocked()
	return m
}

// Open adds a tab to the end of the current window and returns its ID.
func (m *Memory) Open(url, title, favicon string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab := m.newTabLocked(m.current, url)
	tab.Title = title
	tab.FavIconURL = favicon
	m.windows[m.current] = append(m.windows[m.current], tab)
	return tab.ID
}

// Windows returns the window IDs in creation order.
func (m *Memory) Windows() []WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

// Current returns the focused window.
func (m *Memory) Current() WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Tabs returns a copy of the tabs in window id.
func (m *Memory) Tabs(id WindowID) []RawTab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.windows[id])
}

func (m *Memory) CurrentWindowTabs(ctx context.Context) ([]RawTab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.Tabs(m.Current()), nil
}

func (m *Memory) CreateWindow(ctx context.Context, url string, focused bool) (WindowID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newWindowLocked()
	tab := m.newTabLocked(id, url)
	tab.Active = true
	m.windows[id] = []RawTab{tab}
	if focused {
		m.current = id
	}
	return id, nil
}

func (m *Memory) CreateTab(ctx context.Context, opts CreateTabOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	win := opts.WindowID
	if win == 0 {
		win = m.current
	}
	if _, ok := m.windows[win]; !ok {
		return "", fmt.Errorf("create tab in window %d: %w", win, ErrNoWindow)
	}

	tab := m.newTabLocked(win, opts.URL)
	if opts.Active {
		for i := range m.windows[win] {
			m.windows[win][i].Active = false
		}
		tab.Active = true
	}
	m.windows[win] = append(m.windows[win], tab)
	return tab.ID, nil
}

func (m *Memory) CloseTabs(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for win, tabs := range m.windows {
		m.windows[win] = slices.DeleteFunc(tabs, func(t RawTab) bool {
			return slices.Contains(ids, t.ID)
		})
	}
	return nil
}

func (m *Memory) newWindowLocked() WindowID {
	m.nextWindow++
	id := m.nextWindow
	m.windows[id] = nil
	m.order = append(m.order, id)
	return id
}

func (m *Memory) newTabLocked(win WindowID, url string) RawTab {
	m.nextTab++
	return RawTab{
		ID:       fmt.Sprintf("tab-%d", m.nextTab),
		WindowID: win,
		URL:      url,
	}
}
