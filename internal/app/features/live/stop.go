// internal/app/features/live/stop.go

package live

import (
	"context"
	"net/http"

	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// stopResponse reports whether the session actually ended. Ended is
// false when other active hosts remain and the session failed over.
type stopResponse struct {
	OK    bool `json:"ok"`
	Ended bool `json:"ended"`
}

// ServeStop handles POST /api/groups/{groupID}/live/stop.
//
// Only an active host may stop a session, and the session survives the
// departure of one host as long as another host is still heartbeating.
func (h *Handler) ServeStop(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.callerAndGroup(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.GetByID(ctx, groupID)
	if err == groupstore.ErrNotFound {
		apierror.Write(w, apierror.CodeNotFound, "group not found")
		return
	}
	if err != nil {
		h.Log.Error("group load failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "could not stop live session")
		return
	}
	if !group.Live.Active {
		apierror.Write(w, apierror.CodeFailedPrecondition, "live session is not active")
		return
	}

	isHost, err := h.LivePresence.IsActiveHost(ctx, groupID, caller.ID)
	if err != nil {
		h.Log.Error("host check failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "could not stop live session")
		return
	}
	if !isHost {
		apierror.Write(w, apierror.CodePermissionDenied, "not an active host of this session")
		return
	}

	// Drop the caller's host record before deciding: failover looks at
	// who is left, not at who is leaving.
	if err := h.LivePresence.Remove(ctx, groupID, caller.ID); err != nil {
		h.Log.Warn("host record removal failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID),
			zap.Error(err))
	}

	others, err := h.LivePresence.ActiveHosts(ctx, groupID, caller.ID)
	if err != nil {
		h.Log.Error("host listing failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "could not stop live session")
		return
	}

	if len(others) > 0 {
		h.Log.Info("live session failed over",
			zap.String("group_id", groupID.Hex()),
			zap.String("leaving_host", caller.ID),
			zap.Int("remaining_hosts", len(others)))
		apierror.WriteJSON(w, stopResponse{OK: true, Ended: false})
		return
	}

	if err := h.Groups.EndLive(ctx, groupID, ""); err != nil {
		h.Log.Error("live end failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "could not stop live session")
		return
	}

	h.Log.Info("live session stopped",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", caller.ID))
	apierror.WriteJSON(w, stopResponse{OK: true, Ended: true})
}
