package api

import (
	"net/http"

	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/naming"
	"github.com/engleong-lee/stash/internal/sessions"
)

type HealthHandler struct {
	sessions *sessions.Store
	ollama   naming.Provider
	claude   naming.Provider
}

func NewHealthHandler(sess *sessions.Store, ollama, claude naming.Provider) *HealthHandler {
	return &HealthHandler{sessions: sess, ollama: ollama, claude: claude}
}

// Health reports the store and both naming providers. Only a store failure
// degrades the service: naming always has the default name to fall back on.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status: "ok",
	}

	// Check DB
	all, err := h.sessions.List(r.Context())
	if err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
		resp.SessionCount = len(all)
	}

	resp.Ollama = providerCheck(r, h.ollama, "ollama is not reachable")
	resp.Claude = providerCheck(r, h.claude, "no api key configured")

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func providerCheck(r *http.Request, p naming.Provider, downMsg string) models.ServiceCheck {
	if p == nil {
		return models.ServiceCheck{Status: "disabled"}
	}
	if !p.CheckAvailable(r.Context()) {
		return models.ServiceCheck{Status: "unavailable", Message: downMsg}
	}
	return models.ServiceCheck{Status: "ok"}
}
