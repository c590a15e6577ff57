package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/engleong-lee/stash/internal/app"
	"github.com/engleong-lee/stash/internal/browser"
	"github.com/engleong-lee/stash/internal/config"
	"github.com/engleong-lee/stash/internal/models"
)

type harness struct {
	cli     *cli
	app     *app.App
	browser *browser.Memory
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func setupCLI(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		DBPath:        filepath.Join(t.TempDir(), "stash.db"),
		Browser:       "memory",
		Locale:        "en-US",
		OllamaBaseURL: "http://127.0.0.1:1",
		ClaudeAPIURL:  "http://127.0.0.1:1/v1/messages",
		ClaudeModel:   "claude-3-haiku-20240307",
	}
	a, err := app.New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	h := &harness{app: a, browser: a.Browser.(*browser.Memory), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.cli = newCLI(a, h.stdout, h.stderr)
	h.cli.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	return h.cli.execute(args)
}

func (h *harness) save(t *testing.T, id, name string, urls ...string) {
	t.Helper()
	var tabs []models.Tab
	for _, u := range urls {
		tabs = append(tabs, models.Tab{URL: u, Title: u})
	}
	require.NoError(t, h.app.Sessions.Save(context.Background(), models.Session{
		ID: id, Name: name, Tabs: tabs, CreatedAt: 1700000000000, UpdatedAt: 1700000000000,
	}))
}

func TestHelp(t *testing.T) {
	h := setupCLI(t)

	require.NoError(t, h.run(t))
	assert.Contains(t, h.stdout.String(), "Usage: stash")

	err := h.run(t, "frobnicate")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "Unknown command: frobnicate")
}

func TestQuick(t *testing.T) {
	h := setupCLI(t)

	require.NoError(t, h.run(t, "quick"))
	assert.Contains(t, h.stdout.String(), "No tabs")

	h.browser.Open("https://go.dev", "Go", "")
	require.NoError(t, h.run(t, "quick"))

	all, err := h.app.Sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, strings.HasPrefix(all[0].Name, "Session - "))
}

func TestListFilters(t *testing.T) {
	h := setupCLI(t)

	require.NoError(t, h.run(t, "list"))
	assert.Contains(t, h.stdout.String(), "No sessions.")

	h.save(t, "s1", "Rust reading", "https://doc.rust-lang.org")
	h.save(t, "s2", "Groceries", "https://shop.example.com")

	require.NoError(t, h.run(t, "list"))
	out := h.stdout.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Rust reading")
	assert.Contains(t, out, "Groceries")

	require.NoError(t, h.run(t, "list", "rust"))
	out = h.stdout.String()
	assert.Contains(t, out, "Rust reading")
	assert.NotContains(t, out, "Groceries")
}

func TestRestoreAndDelete(t *testing.T) {
	h := setupCLI(t)
	h.save(t, "s1", "Work", "https://a.example.com", "https://b.example.com")

	require.NoError(t, h.run(t, "restore", "s1"))
	assert.Contains(t, h.stdout.String(), "Restored 2 tabs")
	require.Len(t, h.browser.Windows(), 2)
	assert.Len(t, h.browser.Tabs(h.browser.Current()), 2)

	require.NoError(t, h.run(t, "restore", "-current", "s1"))
	assert.Len(t, h.browser.Windows(), 2)
	assert.Len(t, h.browser.Tabs(h.browser.Current()), 4)

	err := h.run(t, "restore", "missing")
	require.Error(t, err)
	assert.Equal(t, "Session not found", err.Error())

	require.NoError(t, h.run(t, "delete", "s1"))
	all, err := h.app.Sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.Error(t, h.run(t, "delete"))
}

func TestExportImport(t *testing.T) {
	h := setupCLI(t)
	h.save(t, "s1", "Work", "https://a.example.com")

	require.NoError(t, h.run(t, "export"))
	var doc models.ExportDocument
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &doc))
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Sessions, 1)

	path := filepath.Join(t.TempDir(), "backup.yaml")
	require.NoError(t, h.run(t, "export", "-o", path))
	assert.Contains(t, h.stdout.String(), "Exported 1 sessions")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sessions:")

	other := setupCLI(t)
	other.save(t, "s0", "Existing", "https://x.example.com")
	require.NoError(t, other.run(t, "import", path))
	assert.Contains(t, other.stdout.String(), "Imported 1 of 1 sessions")

	require.NoError(t, other.run(t, "import", path))
	assert.Contains(t, other.stdout.String(), "Imported 0 of 1 sessions")

	assert.Error(t, h.run(t, "export", "-format", "xml"))
}

func TestNameFallsBackToDefault(t *testing.T) {
	h := setupCLI(t)

	require.NoError(t, h.run(t, "name", "Intro to Rust"))
	assert.True(t, strings.HasPrefix(h.stdout.String(), "Session - "))

	assert.Error(t, h.run(t, "name"))
}

func TestSettings(t *testing.T) {
	h := setupCLI(t)

	require.NoError(t, h.run(t, "settings", "aiProvider=remote", "closeTabsAfterSave=true", "claudeApiKey=sk-test"))
	var got models.Settings
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, models.ProviderClaude, got.AIProvider)
	assert.True(t, got.CloseTabsAfterSave)
	assert.Equal(t, "********", got.ClaudeAPIKey)

	stored, err := h.app.Settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-test", stored.ClaudeAPIKey)

	assert.Error(t, h.run(t, "settings", "closeTabsAfterSave=maybe"))
	assert.Error(t, h.run(t, "settings", "theme=dark"))
	assert.Error(t, h.run(t, "settings", "noequals"))
}
