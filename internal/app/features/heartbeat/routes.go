// internal/app/features/heartbeat/routes.go
package heartbeat

import (
	"github.com/go-chi/chi/v5"
	"github.com/huddlehq/huddle/internal/app/system/auth"
)

// Routes returns the router for presence heartbeat endpoints. Mounted
// under /api/groups/{groupID}/presence.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Post("/", h.ServeHeartbeat)
	r.Delete("/", h.ServeLeave)

	return r
}
