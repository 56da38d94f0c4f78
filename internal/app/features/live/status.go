// internal/app/features/live/status.go

package live

import (
	"context"
	"net/http"
	"time"

	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type statusResponse struct {
	Active       bool       `json:"active"`
	HostID       string     `json:"hostId,omitempty"`
	HostName     string     `json:"hostName,omitempty"`
	HostPhoto    string     `json:"hostPhoto,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	MembersCount int        `json:"membersCount"`
}

// ServeStatus handles GET /api/groups/{groupID}/live.
//
// Reads the stored session state as-is. The flag can run briefly stale
// after a host dies; callers that need a hard answer ask for a token.
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.callerAndGroup(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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
		apierror.Write(w, apierror.CodeInternal, "could not load live status")
		return
	}

	resp := statusResponse{
		Active:       group.Live.Active,
		MembersCount: group.MembersCount,
	}
	if group.Live.Active {
		resp.HostID = group.Live.HostID
		resp.HostName = group.Live.HostName
		resp.HostPhoto = group.Live.HostPhoto
		resp.StartedAt = group.Live.StartedAt
	}
	apierror.WriteJSON(w, resp)
}
