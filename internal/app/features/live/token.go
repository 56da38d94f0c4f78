// internal/app/features/live/token.go

package live

import (
	"context"
	"encoding/json"
	"net/http"

	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/mediatoken"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"github.com/huddlehq/huddle/internal/domain/models"
	"go.uber.org/zap"
)

type tokenRequest struct {
	Role string `json:"role"`
}

type tokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// ServeToken handles POST /api/groups/{groupID}/live/token.
//
// Viewers asking for a token double as a consistency probe: if no host
// is actually heartbeating, the stored session flag is stale, so the
// request ends the session and fails instead of minting a ticket into
// an empty room.
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.callerAndGroup(w, r)
	if !ok {
		return
	}

	var req tokenRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}
	if role != models.RoleHost && role != models.RoleViewer {
		apierror.Write(w, apierror.CodeInvalidArgument, "role must be host or viewer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireActiveMember(ctx, w, groupID, caller.ID) {
		return
	}

	group, err := h.Groups.GetByID(ctx, groupID)
	if err == groupstore.ErrNotFound {
		apierror.Write(w, apierror.CodeNotFound, "group not found")
		return
	}
	if err != nil {
		h.Log.Error("group load failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "could not mint media token")
		return
	}
	if !group.Live.Active {
		apierror.Write(w, apierror.CodeFailedPrecondition, "live session is not active")
		return
	}

	if role == models.RoleViewer {
		hosts, err := h.LivePresence.ActiveHosts(ctx, groupID, "")
		if err != nil {
			h.Log.Error("host listing failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
			apierror.Write(w, apierror.CodeInternal, "could not mint media token")
			return
		}
		if len(hosts) == 0 {
			// The flag says live but nobody is hosting. Repair the
			// record on the spot rather than waiting for the sweep.
			if err := h.Groups.EndLive(ctx, groupID, models.LiveSessionEndedStale); err != nil {
				h.Log.Warn("stale session repair failed",
					zap.String("group_id", groupID.Hex()), zap.Error(err))
			} else {
				h.Log.Info("stale live session ended on token request",
					zap.String("group_id", groupID.Hex()))
			}
			apierror.Write(w, apierror.CodeFailedPrecondition, "live session is not active")
			return
		}
	}

	if h.MediaURL == "" {
		apierror.Write(w, apierror.CodeFailedPrecondition, "media service is not configured")
		return
	}

	name, _ := h.displayIdentity(ctx, caller)

	token, err := h.Minter.Mint(groupID.Hex(), caller.ID, name, role == models.RoleHost)
	if err == mediatoken.ErrConfigMissing {
		apierror.Write(w, apierror.CodeFailedPrecondition, "media service is not configured")
		return
	}
	if err != nil {
		h.Log.Error("token mint failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "could not mint media token")
		return
	}

	apierror.WriteJSON(w, tokenResponse{Token: token, URL: h.MediaURL})
}
