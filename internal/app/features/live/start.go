// internal/app/features/live/start.go

package live

import (
	"context"
	"net/http"

	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"github.com/huddlehq/huddle/internal/domain/models"
	"go.uber.org/zap"
)

// ServeStart handles POST /api/groups/{groupID}/live/start.
//
// Starting is idempotent: if a session is already running the caller
// joins it as an additional host and the original start time is kept.
func (h *Handler) ServeStart(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.callerAndGroup(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireActiveMember(ctx, w, groupID, caller.ID) {
		return
	}

	name, photo := h.displayIdentity(ctx, caller)

	before, err := h.Groups.ActivateLive(ctx, groupID, caller.ID, name, photo)
	if err == groupstore.ErrNotFound {
		apierror.Write(w, apierror.CodeNotFound, "group not found")
		return
	}
	if err != nil {
		h.Log.Error("live activation failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID),
			zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "could not start live session")
		return
	}

	// Record the caller as an active host immediately so a concurrent
	// stale sweep cannot end the session before the first heartbeat.
	if err := h.LivePresence.Heartbeat(ctx, groupID, caller.ID, name, photo, models.RoleHost); err != nil {
		h.Log.Warn("host presence write failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID),
			zap.Error(err))
	}

	if before.Active {
		h.Log.Info("live session joined",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID))
	} else {
		h.Log.Info("live session started",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID))
	}

	apierror.WriteJSON(w, okResponse{OK: true})
}
