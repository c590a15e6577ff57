package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/router"
	"github.com/engleong-lee/stash/internal/sessions"
)

// CommandHandler serves the keyboard-shortcut commands and file export.
type CommandHandler struct {
	router   *router.Router
	sessions *sessions.Store
}

func NewCommandHandler(rt *router.Router, sess *sessions.Store) *CommandHandler {
	return &CommandHandler{router: rt, sessions: sess}
}

// QuickStash handles POST /commands/quick-stash
func (h *CommandHandler) QuickStash(w http.ResponseWriter, r *http.Request) {
	res, err := h.router.QuickStash(r.Context())
	if errors.Is(err, router.ErrNoTabs) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.OK(res))
}

// Export handles GET /export?format=json|yaml and serves the whole
// collection as a download.
func (h *CommandHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := sessions.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	all, err := h.sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	data, err := sessions.Encode(sessions.Export(all, now), format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := "application/json"
	if format == sessions.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="stash-export-%s.%s"`, now.Format("2006-01-02"), format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
