// internal/app/features/heartbeat/handler.go
package heartbeat

// Terminology: Identifiers
//   - GroupID: the MongoDB ObjectID (_id) of a group document
//   - UserID: the subject claim of the caller's verified identity token

import (
	"context"
	"encoding/json"
	"net/http"

	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	presencestore "github.com/huddlehq/huddle/internal/app/store/presence"
	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/auth"
	"github.com/huddlehq/huddle/internal/app/system/membercount"
	"github.com/huddlehq/huddle/internal/app/system/ratelimit"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxNameLen bounds the display name stored on presence records.
const maxNameLen = 80

// sanitizer strips any markup from client-supplied display fields
// before they are persisted and echoed to other members.
var sanitizer = bluemonday.StrictPolicy()

// Handler handles the client heartbeat loop: the periodic presence
// upserts that are the coordinator's only liveness signal, and the
// best-effort explicit leave.
type Handler struct {
	Presence     *presencestore.Store
	LivePresence *livepresencestore.Store
	MemberCount  *membercount.Refresher
	Limiter      *ratelimit.Limiter
	Log          *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(presence *presencestore.Store, livePresence *livepresencestore.Store, memberCount *membercount.Refresher, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		Presence:     presence,
		LivePresence: livePresence,
		MemberCount:  memberCount,
		Limiter:      limiter,
		Log:          logger,
	}
}

// heartbeatRequest is the JSON body for presence heartbeats. All fields
// are optional display hints.
type heartbeatRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// ServeHeartbeat handles POST /api/groups/{groupID}/presence.
//
// Refreshes the caller's presence record and lazily refreshes the
// group's cached member count. Store failures are logged and swallowed:
// the client's next tick retries, and liveness is TTL-based rather than
// ack-based, so a lost beat costs nothing.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.callerAndGroup(w, r)
	if !ok {
		return
	}

	// Shed beats far above the expected once-a-minute cadence.
	if h.Limiter != nil && !h.Limiter.Allow(caller.ID+":"+groupID.Hex()) {
		apierror.WriteJSON(w, okResponse{OK: true})
		return
	}

	var req heartbeatRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // display fields are optional
	}
	name := cleanDisplayField(req.Name)
	photo := cleanDisplayField(req.Photo)
	if name == "" {
		name = cleanDisplayField(caller.Name)
	}
	if photo == "" {
		photo = cleanDisplayField(caller.Photo)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Presence.Heartbeat(ctx, groupID, caller.ID, name, photo); err != nil {
		h.Log.Warn("presence heartbeat write failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID),
			zap.Error(err))
		apierror.WriteJSON(w, okResponse{OK: true})
		return
	}

	if err := h.MemberCount.Refresh(ctx, groupID); err != nil {
		h.Log.Warn("member count refresh failed",
			zap.String("group_id", groupID.Hex()),
			zap.Error(err))
	}

	apierror.WriteJSON(w, okResponse{OK: true})
}

// ServeLeave handles DELETE /api/groups/{groupID}/presence.
//
// Best-effort: removes both presence records so the caller drops out of
// active queries immediately instead of aging out of the window.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.callerAndGroup(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Presence.Remove(ctx, groupID, caller.ID); err != nil {
		h.Log.Warn("presence remove failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID),
			zap.Error(err))
	}
	if err := h.LivePresence.Remove(ctx, groupID, caller.ID); err != nil {
		h.Log.Warn("live presence remove failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", caller.ID),
			zap.Error(err))
	}
	if err := h.MemberCount.ForceRefresh(ctx, groupID); err != nil {
		h.Log.Warn("member count refresh failed",
			zap.String("group_id", groupID.Hex()),
			zap.Error(err))
	}

	apierror.WriteJSON(w, okResponse{OK: true})
}

func (h *Handler) callerAndGroup(w http.ResponseWriter, r *http.Request) (*auth.Caller, primitive.ObjectID, bool) {
	caller, ok := auth.CurrentCaller(r)
	if !ok {
		apierror.Write(w, apierror.CodeUnauthenticated, "sign-in required")
		return nil, primitive.NilObjectID, false
	}

	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		apierror.Write(w, apierror.CodeInvalidArgument, "invalid group id")
		return nil, primitive.NilObjectID, false
	}
	return caller, groupID, true
}

func cleanDisplayField(s string) string {
	s = sanitizer.Sanitize(s)
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s
}
