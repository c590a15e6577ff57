package api

import (
	"net/http"

	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/router"
)

type MessageHandler struct {
	router *router.Router
}

func NewMessageHandler(rt *router.Router) *MessageHandler {
	return &MessageHandler{router: rt}
}

// Handle handles POST /messages. Every decodable message gets a 200 with the
// router's envelope, whether or not it succeeded.
func (h *MessageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var msg models.Message
	if err := decodeJSON(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.router.Handle(r.Context(), msg))
}
