// internal/app/features/live/heartbeat.go

package live

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"github.com/huddlehq/huddle/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const maxDisplayLen = 80

var displaySanitizer = bluemonday.StrictPolicy()

type liveHeartbeatRequest struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// ServeLiveHeartbeat handles POST /api/groups/{groupID}/live/heartbeat.
//
// Participants in a running session beat here in addition to the group
// presence endpoint. Host beats are what keep the session alive; a host
// that stops beating ages out and the sweep or a viewer's token request
// ends the session.
func (h *Handler) ServeLiveHeartbeat(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.callerAndGroup(w, r)
	if !ok {
		return
	}

	var req liveHeartbeatRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	role := req.Role
	if role == "" {
		role = models.RoleHost
	}
	if role != models.RoleHost && role != models.RoleViewer {
		apierror.Write(w, apierror.CodeInvalidArgument, "role must be host or viewer")
		return
	}

	name := cleanDisplay(req.Name)
	photo := cleanDisplay(req.Photo)
	if name == "" {
		name = cleanDisplay(caller.Name)
	}
	if photo == "" {
		photo = cleanDisplay(caller.Photo)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.LivePresence.Heartbeat(ctx, groupID, caller.ID, name, photo, role); err != nil {
		h.Log.Warn("live heartbeat write failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID),
			zap.Error(err))
	}

	apierror.WriteJSON(w, okResponse{OK: true})
}

func cleanDisplay(s string) string {
	s = displaySanitizer.Sanitize(s)
	if len(s) > maxDisplayLen {
		s = s[:maxDisplayLen]
	}
	return s
}
