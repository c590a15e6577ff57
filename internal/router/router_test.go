package router

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/engleong-lee/stash/internal/browser"
	"github.com/engleong-lee/stash/internal/metrics"
	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/sessions"
	"github.com/engleong-lee/stash/internal/settings"
	"github.com/engleong-lee/stash/internal/store"
	"github.com/engleong-lee/stash/internal/tabs"
)

type stubNamer struct {
	name   string
	titles []string
}

func (n *stubNamer) Generate(_ context.Context, titles []string) string {
	n.titles = titles
	return n.name
}

func (n *stubNamer) DefaultName() string { return "Session - 10/19/2026" }

type harness struct {
	router   *Router
	sessions *sessions.Store
	settings *settings.Store
	browser  *browser.Memory
	namer    *stubNamer
}

func setup(t *testing.T) *harness {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &harness{
		sessions: sessions.NewStore(db),
		settings: settings.NewStore(db),
		browser:  browser.NewMemory(),
		namer:    &stubNamer{name: "Rust Learning"},
	}
	h.router = New(h.sessions, h.settings, tabs.NewAdapter(h.browser, zap.NewNop()), h.namer, zap.NewNop(), metrics.New())
	h.router.now = func() time.Time { return time.UnixMilli(1_000) }
	return h
}

func (h *harness) seed(t *testing.T, id string, urls ...string) models.Session {
	t.Helper()
	tabList := make([]models.Tab, 0, len(urls))
	for _, u := range urls {
		tabList = append(tabList, models.Tab{URL: u, Title: u})
	}
	sess := models.Session{ID: id, Name: "Session " + id, Tabs: tabList, CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, h.sessions.Save(context.Background(), sess))
	return sess
}

func boolPtr(b bool) *bool { return &b }

func TestUnknownType(t *testing.T) {
	h := setup(t)

	resp := h.router.Handle(context.Background(), models.Message{Type: "PING"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Unknown message type", resp.Error)
}

func TestGetCurrentTabs(t *testing.T) {
	h := setup(t)
	h.browser.Open("https://a", "A", "")
	h.browser.Open("chrome://history", "History", "")

	resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgGetCurrentTabs})
	require.True(t, resp.Success)
	assert.Equal(t, []models.Tab{{URL: "https://a", Title: "A"}}, resp.Data)
}

func TestSaveAndGetSessions(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	resp := h.router.Handle(ctx, models.Message{
		Type:    models.MsgSaveSession,
		Session: &models.Session{ID: "s1", Name: "One", Tabs: []models.Tab{{URL: "https://a"}}, CreatedAt: 5, UpdatedAt: 5},
	})
	require.True(t, resp.Success)
	assert.Nil(t, resp.Data)

	resp = h.router.Handle(ctx, models.Message{Type: models.MsgGetSessions})
	require.True(t, resp.Success)
	list := resp.Data.([]models.Session)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].ID)
	assert.Equal(t, int64(5), list[0].CreatedAt)
}

func TestSaveFillsMissingFields(t *testing.T) {
	h := setup(t)

	resp := h.router.Handle(context.Background(), models.Message{
		Type:    models.MsgSaveSession,
		Session: &models.Session{Name: "No ID"},
	})
	require.True(t, resp.Success)

	list, err := h.sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, int64(1_000), list[0].CreatedAt)
	assert.Equal(t, int64(1_000), list[0].UpdatedAt)
	assert.NotNil(t, list[0].Tabs)
}

func TestSaveMissingSession(t *testing.T) {
	h := setup(t)

	resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgSaveSession})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "missing field")
}

func tabURLs(tabs []browser.RawTab) []string {
	urls := make([]string, 0, len(tabs))
	for _, t := range tabs {
		urls = append(urls, t.URL)
	}
	return urls
}

func TestSaveClosesOnlySavedTabs(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.browser.Open("https://a", "A", "")
	h.browser.Open("https://b", "B", "")
	h.browser.Open("https://keep", "Keep", "")

	_, err := h.settings.Set(ctx, models.SettingsPatch{CloseTabsAfterSave: boolPtr(true)})
	require.NoError(t, err)

	resp := h.router.Handle(ctx, models.Message{Type: models.MsgSaveSession, Session: &models.Session{
		ID: "s", Name: "n", Tabs: []models.Tab{{URL: "https://a", Title: "A"}},
	}})
	require.True(t, resp.Success)

	assert.Equal(t, []string{"https://b", "https://keep", "chrome://newtab/"}, tabURLs(h.browser.Tabs(h.browser.Current())))
}

func TestSaveLeavesTabsWhenDisabled(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.browser.Open("https://a", "A", "")

	resp := h.router.Handle(ctx, models.Message{Type: models.MsgSaveSession, Session: &models.Session{
		ID: "s", Name: "n", Tabs: []models.Tab{{URL: "https://a", Title: "A"}},
	}})
	require.True(t, resp.Success)

	assert.Equal(t, []string{"https://a"}, tabURLs(h.browser.Tabs(h.browser.Current())))
}

func TestQuickStashClosesCapturedTabs(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.browser.Open("https://a", "A", "")
	h.browser.Open("chrome://settings", "Settings", "")
	h.browser.Open("https://b", "B", "")

	_, err := h.settings.Set(ctx, models.SettingsPatch{CloseTabsAfterSave: boolPtr(true)})
	require.NoError(t, err)

	_, err = h.router.QuickStash(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"chrome://settings", "chrome://newtab/"}, tabURLs(h.browser.Tabs(h.browser.Current())))
}

func TestUpdateSession(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.seed(t, "a", "https://a")

	resp := h.router.Handle(ctx, models.Message{
		Type:    models.MsgUpdateSession,
		Session: &models.Session{ID: "a", Name: "Renamed", CreatedAt: 999},
	})
	require.True(t, resp.Success)

	got, err := h.sessions.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, int64(1), got.CreatedAt)
	assert.Len(t, got.Tabs, 1)
}

func TestDeleteSession(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.seed(t, "a")

	resp := h.router.Handle(ctx, models.Message{Type: models.MsgDeleteSession, SessionID: "missing"})
	assert.True(t, resp.Success)

	resp = h.router.Handle(ctx, models.Message{Type: models.MsgDeleteSession, SessionID: "a"})
	assert.True(t, resp.Success)

	list, err := h.sessions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRestoreSession(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		h := setup(t)

		resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgRestoreSession, SessionID: "nope"})
		assert.False(t, resp.Success)
		assert.Equal(t, "Session not found", resp.Error)
	})

	t.Run("new window by default", func(t *testing.T) {
		h := setup(t)
		h.seed(t, "a", "https://a", "https://b", "https://c")

		resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgRestoreSession, SessionID: "a"})
		require.True(t, resp.Success)
		assert.Equal(t, models.RestoreResult{TabCount: 3}, resp.Data)
		assert.Len(t, h.browser.Windows(), 2)
		assert.Len(t, h.browser.Tabs(h.browser.Current()), 3)
	})

	t.Run("explicit current window", func(t *testing.T) {
		h := setup(t)
		h.seed(t, "a", "https://a", "https://b")

		resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgRestoreSession, SessionID: "a", NewWindow: boolPtr(false)})
		require.True(t, resp.Success)
		assert.Len(t, h.browser.Windows(), 1)
		assert.Len(t, h.browser.Tabs(h.browser.Current()), 2)
	})

	t.Run("setting decides when unspecified", func(t *testing.T) {
		h := setup(t)
		h.seed(t, "a", "https://a")
		_, err := h.settings.Set(context.Background(), models.SettingsPatch{RestoreInNewWindow: boolPtr(false)})
		require.NoError(t, err)

		resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgRestoreSession, SessionID: "a"})
		require.True(t, resp.Success)
		assert.Len(t, h.browser.Windows(), 1)
	})

	t.Run("empty session", func(t *testing.T) {
		h := setup(t)
		h.seed(t, "a")

		resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgRestoreSession, SessionID: "a"})
		require.True(t, resp.Success)
		assert.Equal(t, models.RestoreResult{TabCount: 0}, resp.Data)
		assert.Len(t, h.browser.Windows(), 1)
	})
}

func TestGenerateSessionName(t *testing.T) {
	h := setup(t)

	resp := h.router.Handle(context.Background(), models.Message{
		Type:      models.MsgGenerateSessionName,
		TabTitles: []string{"Intro to Rust", "Rust Ownership Guide"},
	})
	require.True(t, resp.Success)
	assert.Equal(t, "Rust Learning", resp.Data)
	assert.Equal(t, []string{"Intro to Rust", "Rust Ownership Guide"}, h.namer.titles)
}

func TestSettingsMessages(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	resp := h.router.Handle(ctx, models.Message{Type: models.MsgGetSettings})
	require.True(t, resp.Success)
	assert.Equal(t, models.DefaultSettings(), resp.Data)

	model := "mistral:7b"
	resp = h.router.Handle(ctx, models.Message{Type: models.MsgUpdateSettings, Settings: &models.SettingsPatch{OllamaModel: &model}})
	require.True(t, resp.Success)
	assert.Equal(t, "mistral:7b", resp.Data.(models.Settings).OllamaModel)

	resp = h.router.Handle(ctx, models.Message{Type: models.MsgUpdateSettings})
	assert.False(t, resp.Success)
}

func TestSearchSessions(t *testing.T) {
	h := setup(t)
	h.seed(t, "a", "https://doc.rust-lang.org")
	h.seed(t, "b", "https://go.dev")

	resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgSearchSessions, Query: "RUST"})
	require.True(t, resp.Success)
	list := resp.Data.([]models.Session)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}

func TestExportImport(t *testing.T) {
	src := setup(t)
	src.seed(t, "a", "https://a")
	src.seed(t, "b", "https://b")

	resp := src.router.Handle(context.Background(), models.Message{Type: models.MsgExportSessions})
	require.True(t, resp.Success)
	doc := resp.Data.(models.ExportDocument)
	assert.Equal(t, 1, doc.Version)
	assert.Len(t, doc.Sessions, 2)

	dst := setup(t)
	dst.seed(t, "a", "https://other")

	resp = dst.router.Handle(context.Background(), models.Message{Type: models.MsgImportSessions, Document: &doc})
	require.True(t, resp.Success)
	assert.Equal(t, models.ImportResult{Imported: 1}, resp.Data)

	resp = dst.router.Handle(context.Background(), models.Message{Type: models.MsgImportSessions, Document: &models.ExportDocument{}})
	assert.False(t, resp.Success)
}

func TestAddCurrentTabs(t *testing.T) {
	h := setup(t)
	h.seed(t, "a", "https://a", "https://b")
	h.browser.Open("https://b", "B", "")
	h.browser.Open("https://c", "C", "")

	resp := h.router.Handle(context.Background(), models.Message{Type: models.MsgAddCurrentTabs, SessionID: "a"})
	require.True(t, resp.Success)
	sess := resp.Data.(*models.Session)

	urls := make([]string, 0, len(sess.Tabs))
	for _, tab := range sess.Tabs {
		urls = append(urls, tab.URL)
	}
	assert.Equal(t, []string{"https://a", "https://b", "https://c"}, urls)
	assert.Equal(t, int64(1), sess.CreatedAt)

	resp = h.router.Handle(context.Background(), models.Message{Type: models.MsgAddCurrentTabs, SessionID: "missing"})
	assert.Equal(t, "Session not found", resp.Error)
}

func TestQuickStash(t *testing.T) {
	t.Run("no tabs", func(t *testing.T) {
		h := setup(t)
		h.browser.Open("chrome://newtab/", "New Tab", "")

		_, err := h.router.QuickStash(context.Background())
		assert.ErrorIs(t, err, ErrNoTabs)

		list, err := h.sessions.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("saves with default name", func(t *testing.T) {
		h := setup(t)
		h.browser.Open("https://a", "A", "")
		h.browser.Open("https://b", "", "")

		res, err := h.router.QuickStash(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Session - 10/19/2026", res.Session.Name)
		assert.True(t, strings.HasPrefix(res.Message, "Saved 2 tabs as "))
		assert.Equal(t, int64(1_000), res.Session.CreatedAt)
		assert.Nil(t, h.namer.titles)

		list, err := h.sessions.List(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, res.Session, list[0])
		assert.Equal(t, "Untitled", list[0].Tabs[1].Title)
	})
}
