package widget

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler serves the browser chat widget.
type Handler struct{}

// New returns the widget handler.
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes mounts the page at the site root.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleUI)
}

func (h *Handler) handleUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(pageHTML)); err != nil {
		log.Warn().Err(err).Msg("failed to write widget page")
	}
}
