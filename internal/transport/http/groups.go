package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vahe2002pog/tg-queue/internal/domain"
)

// GroupAPI is the minimal interface needed for group endpoints.
type GroupAPI interface {
	CreateGroup(ctx context.Context, name string, creatorID int64) (domain.Group, error)
	GetGroup(ctx context.Context, groupID int64) (domain.Group, error)
	ListGroups(ctx context.Context, actorID int64) ([]domain.Group, error)
	JoinGroup(ctx context.Context, groupID, memberID int64) error
	LeaveGroup(ctx context.Context, groupID, memberID int64) error
	ListGroupMembers(ctx context.Context, groupID int64) ([]int64, error)
	DeleteGroup(ctx context.Context, groupID, actorID int64) error
}

type groupResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toGroupResponse(g domain.Group) groupResponse {
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatorID: g.CreatorID,
		CreatedAt: g.CreatedAt,
	}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// HandleCreateGroup returns an HTTP handler for creating groups.
func HandleCreateGroup(svc GroupAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		var req createGroupRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		group, err := svc.CreateGroup(r.Context(), req.Name, actorID)
		if err != nil {
			if errors.Is(err, domain.ErrGroupNameRequired) {
				writeError(w, http.StatusBadRequest, codeGroupNameRequired, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toGroupResponse(group))
	}
}

// HandleListGroups returns an HTTP handler listing groups visible to
// the caller.
func HandleListGroups(svc GroupAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		groups, err := svc.ListGroups(r.Context(), actorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]groupResponse, 0, len(groups))
		for _, g := range groups {
			resp = append(resp, toGroupResponse(g))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleGetGroup returns an HTTP handler fetching a single group.
func HandleGetGroup(svc GroupAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := pathID(w, r, "groupID")
		if !ok {
			return
		}

		group, err := svc.GetGroup(r.Context(), groupID)
		if err != nil {
			if errors.Is(err, domain.ErrGroupNotFound) {
				writeError(w, http.StatusNotFound, codeGroupNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toGroupResponse(group))
	}
}

// HandleJoinGroup returns an HTTP handler enrolling the caller in a
// group. Joining twice is a no-op.
func HandleJoinGroup(svc GroupAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		groupID, ok := pathID(w, r, "groupID")
		if !ok {
			return
		}

		if err := svc.JoinGroup(r.Context(), groupID, actorID); err != nil {
			if errors.Is(err, domain.ErrGroupNotFound) {
				writeError(w, http.StatusNotFound, codeGroupNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleLeaveGroup returns an HTTP handler removing the caller from a
// group.
func HandleLeaveGroup(svc GroupAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		groupID, ok := pathID(w, r, "groupID")
		if !ok {
			return
		}

		if err := svc.LeaveGroup(r.Context(), groupID, actorID); err != nil {
			switch {
			case errors.Is(err, domain.ErrGroupNotFound):
				writeError(w, http.StatusNotFound, codeGroupNotFound, err.Error())
			case errors.Is(err, domain.ErrNotMember):
				writeError(w, http.StatusNotFound, codeNotMember, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type groupMembersResponse struct {
	GroupID int64   `json:"group_id"`
	Members []int64 `json:"members"`
}

// HandleListGroupMembers returns an HTTP handler listing a group's
// member ids.
func HandleListGroupMembers(svc GroupAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := pathID(w, r, "groupID")
		if !ok {
			return
		}

		members, err := svc.ListGroupMembers(r.Context(), groupID)
		if err != nil {
			if errors.Is(err, domain.ErrGroupNotFound) {
				writeError(w, http.StatusNotFound, codeGroupNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(groupMembersResponse{GroupID: groupID, Members: members})
	}
}

// HandleDeleteGroup returns an HTTP handler deleting a group. Only the
// creator or the operator may delete.
func HandleDeleteGroup(svc GroupAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		groupID, ok := pathID(w, r, "groupID")
		if !ok {
			return
		}

		if err := svc.DeleteGroup(r.Context(), groupID, actorID); err != nil {
			switch {
			case errors.Is(err, domain.ErrGroupNotFound):
				writeError(w, http.StatusNotFound, codeGroupNotFound, err.Error())
			case errors.Is(err, domain.ErrForbidden):
				writeError(w, http.StatusForbidden, codeForbidden, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
