package models

import (
	"time"

	"github.com/google/uuid"
)

// Tab is a single browser tab captured into a session. The URL doubles as the
// de-duplication key when tabs are merged into an existing session.
type Tab struct {
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title" yaml:"title"`
	Favicon string `json:"favicon" yaml:"favicon"`
}

// Session is a named, timestamped snapshot of a set of tabs.
// Timestamps are Unix milliseconds.
type Session struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Tabs      []Tab  `json:"tabs" yaml:"tabs"`
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt int64  `json:"updatedAt" yaml:"updatedAt"`
}

// NewSession builds a session with a fresh random ID and both timestamps set to now.
func NewSession(name string, tabs []Tab, now time.Time) Session {
	ts := now.UnixMilli()
	return Session{
		ID:        uuid.New().String(),
		Name:      name,
		Tabs:      tabs,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// SessionPatch carries the fields of an update. Nil fields are left unchanged.
type SessionPatch struct {
	Name *string `json:"name,omitempty"`
	Tabs []Tab   `json:"tabs,omitempty"`
}
