package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/engleong-lee/stash/internal/models"
)

// maxBodyBytes bounds request bodies. Import documents are the largest.
const maxBodyBytes = 16 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a failed envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.Fail(msg))
}

func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty body")
		}
		return err
	}
	return nil
}
