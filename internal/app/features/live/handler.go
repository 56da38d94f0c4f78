// internal/app/features/live/handler.go

// Package live implements the group live-session RPCs: start, stop,
// token minting, the live participation heartbeat, and a status read.
//
// The session state machine lives on the group document, but every
// decision here re-derives the active host set from live-presence
// records instead of trusting the stored flag. The flag is allowed to
// run stale; the token path and the periodic sweep correct it.
package live

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	presencestore "github.com/huddlehq/huddle/internal/app/store/presence"
	profilestore "github.com/huddlehq/huddle/internal/app/store/profiles"
	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/auth"
	"github.com/huddlehq/huddle/internal/app/system/mediatoken"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fallbackDisplayName labels callers with no profile and no name claim.
const fallbackDisplayName = "Member"

// Handler holds the stores and minting dependencies for the live RPCs.
type Handler struct {
	Groups       *groupstore.Store
	Presence     *presencestore.Store
	LivePresence *livepresencestore.Store
	Profiles     *profilestore.Store
	Minter       mediatoken.Minter
	MediaURL     string
	Log          *zap.Logger
}

// NewHandler creates a new live-session handler.
func NewHandler(
	groups *groupstore.Store,
	presence *presencestore.Store,
	livePresence *livepresencestore.Store,
	profiles *profilestore.Store,
	minter mediatoken.Minter,
	mediaURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Groups:       groups,
		Presence:     presence,
		LivePresence: livePresence,
		Profiles:     profiles,
		Minter:       minter,
		MediaURL:     mediaURL,
		Log:          logger,
	}
}

type okResponse struct {
	OK bool `json:"ok"`
}

// callerAndGroup extracts the verified caller and the groupID path
// parameter, writing the error envelope on failure.
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

// requireActiveMember enforces the membership precondition shared by all
// live RPCs: an active presence record, not any cached count or flag.
func (h *Handler) requireActiveMember(ctx context.Context, w http.ResponseWriter, groupID primitive.ObjectID, userID string) bool {
	active, err := h.Presence.IsActive(ctx, groupID, userID)
	if err != nil {
		h.Log.Error("membership check failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", userID),
			zap.Error(err))
		apierror.Write(w, apierror.CodeInternal, "membership check failed")
		return false
	}
	if !active {
		apierror.Write(w, apierror.CodePermissionDenied, "not an active member of this group")
		return false
	}
	return true
}

// displayIdentity resolves the caller's display name and photo: profile
// store first, then identity-token claims, then a generic label.
func (h *Handler) displayIdentity(ctx context.Context, caller *auth.Caller) (name, photo string) {
	p, err := h.Profiles.GetByUserID(ctx, caller.ID)
	if err == nil {
		name, photo = p.DisplayName, p.Photo
	} else if err != profilestore.ErrNotFound {
		h.Log.Debug("profile lookup failed", zap.String("user_id", caller.ID), zap.Error(err))
	}

	if name == "" {
		name = caller.Name
	}
	if name == "" {
		name = fallbackDisplayName
	}
	if photo == "" {
		photo = caller.Photo
	}
	return name, photo
}
