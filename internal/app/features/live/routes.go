// internal/app/features/live/routes.go

package live

import (
	"github.com/go-chi/chi/v5"
	"github.com/huddlehq/huddle/internal/app/system/auth"
)

// Routes returns the live-session router, mounted under
// /api/groups/{groupID}/live. Every route requires a verified caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeStatus)
	r.Post("/start", h.ServeStart)
	r.Post("/stop", h.ServeStop)
	r.Post("/token", h.ServeToken)
	r.Post("/heartbeat", h.ServeLiveHeartbeat)

	return r
}
