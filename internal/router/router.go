// Package router dispatches tagged messages to the stash components and wraps
// every outcome in a models.Response.
package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/engleong-lee/stash/internal/metrics"
	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/sessions"
	"github.com/engleong-lee/stash/internal/settings"
	"github.com/engleong-lee/stash/internal/tabs"
)

// Error messages carried in failed responses.
const (
	MsgSessionNotFound = "Session not found"
	MsgUnknownType     = "Unknown message type"
)

var (
	// ErrSessionNotFound is returned when a message names an unknown session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoTabs is returned by QuickStash when the window has nothing to save.
	ErrNoTabs = errors.New("no tabs to stash in the current window")
	// ErrMissingField is returned when a message lacks a field its type needs.
	ErrMissingField = errors.New("missing field")
)

// Namer produces session names.
type Namer interface {
	Generate(ctx context.Context, titles []string) string
	DefaultName() string
}

// Router owns no state of its own; every message goes straight to the stores.
type Router struct {
	sessions *sessions.Store
	settings *settings.Store
	tabs     *tabs.Adapter
	namer    Namer
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates a router. m may be nil.
func New(sess *sessions.Store, set *settings.Store, ta *tabs.Adapter, namer Namer, logger *zap.Logger, m *metrics.Metrics) *Router {
	return &Router{
		sessions: sess,
		settings: set,
		tabs:     ta,
		namer:    namer,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Handle runs one message. It never panics outward and never returns a Go
// error: failures come back as {success: false, error}.
func (r *Router) Handle(ctx context.Context, msg models.Message) (resp models.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("message handler panicked", zap.String("type", string(msg.Type)), zap.Any("panic", rec))
			resp = models.Fail(fmt.Sprint(rec))
		}
		r.metrics.ObserveMessage(string(msg.Type), resp.Success)
	}()

	handler, ok := r.handler(msg.Type)
	if !ok {
		return models.Fail(MsgUnknownType)
	}

	data, err := handler(ctx, msg)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return models.Fail(MsgSessionNotFound)
		}
		r.logger.Warn("message failed", zap.String("type", string(msg.Type)), zap.Error(err))
		return models.Fail(err.Error())
	}
	return models.OK(data)
}

type handlerFunc func(ctx context.Context, msg models.Message) (any, error)

func (r *Router) handler(t models.MessageType) (handlerFunc, bool) {
	switch t {
	case models.MsgGetCurrentTabs:
		return r.getCurrentTabs, true
	case models.MsgGetSessions:
		return r.getSessions, true
	case models.MsgSaveSession:
		return r.saveSession, true
	case models.MsgUpdateSession:
		return r.updateSession, true
	case models.MsgDeleteSession:
		return r.deleteSession, true
	case models.MsgRestoreSession:
		return r.restoreSession, true
	case models.MsgGenerateSessionName:
		return r.generateName, true
	case models.MsgGetSettings:
		return r.getSettings, true
	case models.MsgUpdateSettings:
		return r.updateSettings, true
	case models.MsgSearchSessions:
		return r.searchSessions, true
	case models.MsgExportSessions:
		return r.exportSessions, true
	case models.MsgImportSessions:
		return r.importSessions, true
	case models.MsgAddCurrentTabs:
		return r.addCurrentTabs, true
	}
	return nil, false
}

func (r *Router) getCurrentTabs(ctx context.Context, _ models.Message) (any, error) {
	return r.tabs.CaptureCurrentWindow(ctx)
}

func (r *Router) getSessions(ctx context.Context, _ models.Message) (any, error) {
	return r.sessions.List(ctx)
}

// saveSession stores msg.Session as given. A blank ID or zero timestamps are
// filled in so hand-written clients can omit them.
func (r *Router) saveSession(ctx context.Context, msg models.Message) (any, error) {
	if msg.Session == nil {
		return nil, fmt.Errorf("%w: session", ErrMissingField)
	}
	sess := *msg.Session
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.CreatedAt == 0 {
		sess.CreatedAt = r.now().UnixMilli()
	}
	if sess.UpdatedAt == 0 {
		sess.UpdatedAt = sess.CreatedAt
	}
	if sess.Tabs == nil {
		sess.Tabs = []models.Tab{}
	}

	if err := r.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	r.metrics.SessionSaved()
	r.logger.Info("session saved", zap.String("id", sess.ID), zap.Int("tabs", len(sess.Tabs)))

	r.closeAfterSave(ctx, sess.Tabs)
	return nil, nil
}

// closeAfterSave closes the just-saved tabs when the user asked for it. A
// failure is logged only: the session is already saved.
func (r *Router) closeAfterSave(ctx context.Context, saved []models.Tab) {
	s, err := r.settings.Get(ctx)
	if err != nil {
		r.logger.Warn("read settings after save", zap.Error(err))
		return
	}
	if !s.CloseTabsAfterSave {
		return
	}
	if err := r.tabs.CloseSaved(ctx, saved); err != nil {
		r.logger.Warn("close tabs after save", zap.Error(err))
	}
}

// updateSession applies only the name and tabs of msg.Session. A blank name
// or absent tabs leave the stored value alone.
func (r *Router) updateSession(ctx context.Context, msg models.Message) (any, error) {
	if msg.Session == nil {
		return nil, fmt.Errorf("%w: session", ErrMissingField)
	}
	patch := models.SessionPatch{Tabs: msg.Session.Tabs}
	if name := msg.Session.Name; name != "" {
		patch.Name = &name
	}
	return nil, r.sessions.Update(ctx, msg.Session.ID, patch)
}

func (r *Router) deleteSession(ctx context.Context, msg models.Message) (any, error) {
	return nil, r.sessions.Delete(ctx, msg.SessionID)
}

// restoreSession reopens a saved session. Without an explicit newWindow the
// restoreInNewWindow setting decides.
func (r *Router) restoreSession(ctx context.Context, msg models.Message) (any, error) {
	sess, err := r.sessions.Get(ctx, msg.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	newWindow := true
	if msg.NewWindow != nil {
		newWindow = *msg.NewWindow
	} else if s, err := r.settings.Get(ctx); err == nil {
		newWindow = s.RestoreInNewWindow
	}

	if err := r.tabs.Restore(ctx, sess.Tabs, newWindow); err != nil {
		return nil, err
	}
	r.metrics.Restored(len(sess.Tabs))
	return models.RestoreResult{TabCount: len(sess.Tabs)}, nil
}

// generateName always succeeds.
func (r *Router) generateName(ctx context.Context, msg models.Message) (any, error) {
	return r.namer.Generate(ctx, msg.TabTitles), nil
}

func (r *Router) getSettings(ctx context.Context, _ models.Message) (any, error) {
	return r.settings.Get(ctx)
}

func (r *Router) updateSettings(ctx context.Context, msg models.Message) (any, error) {
	if msg.Settings == nil {
		return nil, fmt.Errorf("%w: settings", ErrMissingField)
	}
	return r.settings.Set(ctx, *msg.Settings)
}

func (r *Router) searchSessions(ctx context.Context, msg models.Message) (any, error) {
	all, err := r.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	return sessions.Filter(all, msg.Query), nil
}

func (r *Router) exportSessions(ctx context.Context, _ models.Message) (any, error) {
	all, err := r.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	return sessions.Export(all, r.now()), nil
}

func (r *Router) importSessions(ctx context.Context, msg models.Message) (any, error) {
	if msg.Document == nil || msg.Document.Sessions == nil {
		return nil, sessions.ErrNoSessions
	}
	n, err := r.sessions.Import(ctx, msg.Document.Sessions)
	if err != nil {
		return nil, err
	}
	r.logger.Info("sessions imported", zap.Int("imported", n), zap.Int("offered", len(msg.Document.Sessions)))
	return models.ImportResult{Imported: n}, nil
}

// addCurrentTabs merges the current window's tabs into a saved session,
// skipping URLs it already holds.
func (r *Router) addCurrentTabs(ctx context.Context, msg models.Message) (any, error) {
	sess, err := r.sessions.Get(ctx, msg.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	current, err := r.tabs.CaptureCurrentWindow(ctx)
	if err != nil {
		return nil, err
	}

	merged := sessions.MergeTabs(sess.Tabs, current)
	if err := r.sessions.Update(ctx, sess.ID, models.SessionPatch{Tabs: merged}); err != nil {
		return nil, err
	}
	return r.sessions.Get(ctx, sess.ID)
}

// QuickStashResult describes a quick stash.
type QuickStashResult struct {
	Session models.Session `json:"session"`
	Message string         `json:"message"`
}

// QuickStash saves the current window under the default name without asking
// any naming provider.
func (r *Router) QuickStash(ctx context.Context) (*QuickStashResult, error) {
	captured, err := r.tabs.CaptureCurrentWindow(ctx)
	if err != nil {
		return nil, err
	}
	if len(captured) == 0 {
		return nil, ErrNoTabs
	}

	sess := models.NewSession(r.namer.DefaultName(), captured, r.now())
	if err := r.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	r.metrics.SessionSaved()
	r.logger.Info("quick stash", zap.String("id", sess.ID), zap.Int("tabs", len(captured)))

	r.closeAfterSave(ctx, captured)

	return &QuickStashResult{
		Session: sess,
		Message: fmt.Sprintf("Saved %d tabs as %q", len(captured), sess.Name),
	}, nil
}
