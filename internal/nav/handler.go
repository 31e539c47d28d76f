package nav

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/platform/httpx"
	"github.com/interviewhub/gateway/internal/shared"
)

// Handler serves the resolved navigation surface for the current session so
// the SPA renders menus and buttons without re-deriving the rules.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, resolver *Resolver) *Handler {
	return &Handler{logger: logger, resolver: resolver}
}

// MountRoutes registers navigation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/menu", h.menu)
}

type menuEntry struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

type menuPayload struct {
	View    string      `json:"view"`
	Entries []menuEntry `json:"entries"`
	Buttons []string    `json:"buttons"`
}

func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	view := authz.ViewPublic
	var eval authz.Evaluator
	if sess != nil {
		view = sess.View()
		eval = sess.Evaluator()
	}
	payload := menuPayload{View: view.String()}
	for _, entry := range h.resolver.Entries(view, eval) {
		payload.Entries = append(payload.Entries, menuEntry{Path: entry.Path, Label: entry.Label})
	}
	payload.Buttons = h.resolver.Buttons(view, eval)
	httpx.OK(w, payload)
}
