package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vahe2002pog/tg-queue/internal/app"
	"github.com/vahe2002pog/tg-queue/internal/domain"
	"github.com/vahe2002pog/tg-queue/internal/invite"
)

// QueueAdminService is the minimal interface needed for queue
// lifecycle endpoints.
type QueueAdminService interface {
	CreateQueue(ctx context.Context, in app.CreateQueueInput) (domain.Queue, error)
	GetQueue(ctx context.Context, queueID int64) (domain.Queue, error)
	ListQueues(ctx context.Context, actorID int64) ([]domain.Queue, error)
	ListOpenQueues(ctx context.Context) ([]domain.Queue, error)
	ListGroupQueues(ctx context.Context, groupID int64) ([]domain.Queue, error)
	DeleteQueue(ctx context.Context, queueID, actorID int64) error
	InviteToken(ctx context.Context, queueID, actorID int64) (string, error)
}

type queueResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CreatorID     int64      `json:"creator_id"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	StartsAt      time.Time  `json:"starts_at"`
	UnlockedAfter *time.Time `json:"unlocked_after,omitempty"`
	GroupID       *int64     `json:"group_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toQueueResponse(q domain.Queue) queueResponse {
	return queueResponse{
		ID:            q.ID,
		Name:          q.Name,
		CreatorID:     q.CreatorID,
		Latitude:      q.Latitude,
		Longitude:     q.Longitude,
		StartsAt:      q.StartsAt,
		UnlockedAfter: q.UnlockedAfter,
		GroupID:       q.GroupID,
		CreatedAt:     q.CreatedAt,
	}
}

type createQueueRequest struct {
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	StartsAt      string  `json:"starts_at"`
	UnlockedAfter string  `json:"unlocked_after,omitempty"`
	GroupID       *int64  `json:"group_id,omitempty"`
}

// HandleCreateQueue returns an HTTP handler for creating queues.
func HandleCreateQueue(svc QueueAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		var req createQueueRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, codeQueueNameRequired, domain.ErrQueueNameRequired.Error())
			return
		}

		startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "invalid starts_at format")
			return
		}

		var unlockedAfter *time.Time
		if req.UnlockedAfter != "" {
			parsed, err := time.Parse(time.RFC3339, req.UnlockedAfter)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "invalid unlocked_after format")
				return
			}
			unlockedAfter = &parsed
		}

		queue, err := svc.CreateQueue(r.Context(), app.CreateQueueInput{
			Name:          req.Name,
			CreatorID:     actorID,
			Latitude:      req.Latitude,
			Longitude:     req.Longitude,
			StartsAt:      startsAt,
			UnlockedAfter: unlockedAfter,
			GroupID:       req.GroupID,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrQueueNameRequired):
				writeError(w, http.StatusBadRequest, codeQueueNameRequired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toQueueResponse(queue))
	}
}

// HandleListQueues returns an HTTP handler listing queues visible to
// the caller.
func HandleListQueues(svc QueueAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		queues, err := svc.ListQueues(r.Context(), actorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]queueResponse, 0, len(queues))
		for _, q := range queues {
			resp = append(resp, toQueueResponse(q))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleListOpenQueues returns an HTTP handler listing queues that
// have already started.
func HandleListOpenQueues(svc QueueAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queues, err := svc.ListOpenQueues(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]queueResponse, 0, len(queues))
		for _, q := range queues {
			resp = append(resp, toQueueResponse(q))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleListGroupQueues returns an HTTP handler listing the queues
// attached to a group.
func HandleListGroupQueues(svc QueueAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := pathID(w, r, "groupID")
		if !ok {
			return
		}

		queues, err := svc.ListGroupQueues(r.Context(), groupID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]queueResponse, 0, len(queues))
		for _, q := range queues {
			resp = append(resp, toQueueResponse(q))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleGetQueue returns an HTTP handler fetching a single queue.
func HandleGetQueue(svc QueueAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		queue, err := svc.GetQueue(r.Context(), queueID)
		if err != nil {
			if errors.Is(err, domain.ErrQueueNotFound) {
				writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toQueueResponse(queue))
	}
}

// HandleDeleteQueue returns an HTTP handler deleting a queue. Only the
// creator or the operator may delete.
func HandleDeleteQueue(svc QueueAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		if err := svc.DeleteQueue(r.Context(), queueID, actorID); err != nil {
			switch {
			case errors.Is(err, domain.ErrQueueNotFound):
				writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
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

type inviteResponse struct {
	Token string `json:"token"`
	Link  string `json:"link"`
}

// HandleInvite returns an HTTP handler issuing a deep-link invite for
// a queue.
func HandleInvite(svc QueueAdminService, botHost string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		token, err := svc.InviteToken(r.Context(), queueID, actorID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrQueueNotFound):
				writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
			case errors.Is(err, domain.ErrForbidden):
				writeError(w, http.StatusForbidden, codeForbidden, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(inviteResponse{
			Token: token,
			Link:  botHost + "?start=" + invite.LinkPrefix + token,
		})
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		return 0, false
	}
	return id, true
}
