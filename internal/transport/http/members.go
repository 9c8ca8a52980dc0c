package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vahe2002pog/tg-queue/internal/app"
	"github.com/vahe2002pog/tg-queue/internal/domain"
	"github.com/vahe2002pog/tg-queue/internal/geo"
	"github.com/vahe2002pog/tg-queue/internal/invite"
	"github.com/vahe2002pog/tg-queue/internal/metrics"
)

// AdmissionAPI is the minimal interface needed for join endpoints.
type AdmissionAPI interface {
	RequestJoin(ctx context.Context, queueID, memberID int64, loc *geo.Point) (app.JoinResult, error)
	ResolveInvite(ctx context.Context, token string, memberID int64, loc *geo.Point) (app.JoinResult, error)
}

// OrderingAPI is the minimal interface needed for membership and
// turn-order endpoints.
type OrderingAPI interface {
	Leave(ctx context.Context, queueID, memberID int64) error
	CedeTurn(ctx context.Context, queueID, memberID int64) (int64, error)
	Rank(ctx context.Context, queueID, memberID int64) (int, error)
	Members(ctx context.Context, queueID int64) ([]int64, error)
}

type joinRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r joinRequest) location() (*geo.Point, bool) {
	if r.Latitude == nil && r.Longitude == nil {
		return nil, true
	}
	if r.Latitude == nil || r.Longitude == nil {
		return nil, false
	}
	return &geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}, true
}

type joinResponse struct {
	QueueID       int64 `json:"queue_id"`
	Position      int   `json:"position"`
	AlreadyJoined bool  `json:"already_joined"`
}

func writeJoinResult(w http.ResponseWriter, res app.JoinResult) {
	outcome := "joined"
	if res.AlreadyJoined {
		outcome = "already_joined"
	}
	metrics.JoinsTotal.WithLabelValues(outcome).Inc()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(joinResponse{
		QueueID:       res.QueueID,
		Position:      res.Rank,
		AlreadyJoined: res.AlreadyJoined,
	})
}

func writeJoinError(w http.ResponseWriter, err error) {
	metrics.JoinsTotal.WithLabelValues("rejected").Inc()
	switch {
	case errors.Is(err, domain.ErrQueueNotFound):
		writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
	case errors.Is(err, domain.ErrTooEarly):
		writeError(w, http.StatusConflict, codeTooEarly, err.Error())
	case errors.Is(err, domain.ErrLocationRequired):
		writeError(w, http.StatusBadRequest, codeLocationRequired, err.Error())
	case errors.Is(err, domain.ErrTooFar):
		writeError(w, http.StatusForbidden, codeTooFar, err.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, codeInvalidToken, err.Error())
	case errors.Is(err, domain.ErrCreatorMismatch):
		writeError(w, http.StatusForbidden, codeCreatorMismatch, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

// HandleJoinQueue returns an HTTP handler admitting the caller into a
// queue. The body is optional; without coordinates the request only
// succeeds inside an unlock window.
func HandleJoinQueue(svc AdmissionAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		var req joinRequest
		if r.Body != nil && r.ContentLength != 0 {
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
		}
		loc, ok := req.location()
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "latitude and longitude must be sent together")
			return
		}

		res, err := svc.RequestJoin(r.Context(), queueID, memberID, loc)
		if err != nil {
			writeJoinError(w, err)
			return
		}
		writeJoinResult(w, res)
	}
}

type inviteJoinRequest struct {
	Token     string   `json:"token"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HandleInviteJoin returns an HTTP handler resolving a deep-link
// invite token and admitting the caller.
func HandleInviteJoin(svc AdmissionAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		var req inviteJoinRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Token == "" {
			writeError(w, http.StatusBadRequest, codeInvalidToken, domain.ErrInvalidToken.Error())
			return
		}
		// The gateway may forward the deep-link start payload verbatim.
		token := strings.TrimPrefix(req.Token, invite.LinkPrefix)
		loc, ok := joinRequest{Latitude: req.Latitude, Longitude: req.Longitude}.location()
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "latitude and longitude must be sent together")
			return
		}

		res, err := svc.ResolveInvite(r.Context(), token, memberID, loc)
		if err != nil {
			writeJoinError(w, err)
			return
		}
		writeJoinResult(w, res)
	}
}

// HandleLeaveQueue returns an HTTP handler removing the caller from a
// queue.
func HandleLeaveQueue(svc OrderingAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		if err := svc.Leave(r.Context(), queueID, memberID); err != nil {
			switch {
			case errors.Is(err, domain.ErrQueueNotFound):
				writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
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

type skipResponse struct {
	SwappedWith int64 `json:"swapped_with"`
}

// HandleSkipTurn returns an HTTP handler that swaps the caller with
// the next member behind them.
func HandleSkipTurn(svc OrderingAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		behindID, err := svc.CedeTurn(r.Context(), queueID, memberID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrQueueNotFound):
				writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
			case errors.Is(err, domain.ErrNotMember):
				writeError(w, http.StatusNotFound, codeNotMember, err.Error())
			case errors.Is(err, domain.ErrAlreadyLast):
				writeError(w, http.StatusConflict, codeAlreadyLast, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		metrics.CedeTurnsTotal.Inc()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(skipResponse{SwappedWith: behindID})
	}
}

type memberEntry struct {
	MemberID int64 `json:"member_id"`
	Position int   `json:"position"`
}

// HandleListMembers returns an HTTP handler listing queue members in
// turn order.
func HandleListMembers(svc OrderingAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		members, err := svc.Members(r.Context(), queueID)
		if err != nil {
			if errors.Is(err, domain.ErrQueueNotFound) {
				writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]memberEntry, 0, len(members))
		for i, id := range members {
			resp = append(resp, memberEntry{MemberID: id, Position: i})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type positionResponse struct {
	QueueID  int64 `json:"queue_id"`
	Position int   `json:"position"`
}

// HandlePosition returns an HTTP handler reporting the caller's
// current position in a queue.
func HandlePosition(svc OrderingAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		queueID, ok := pathID(w, r, "queueID")
		if !ok {
			return
		}

		rank, err := svc.Rank(r.Context(), queueID, memberID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrQueueNotFound):
				writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
			case errors.Is(err, domain.ErrNotMember):
				writeError(w, http.StatusNotFound, codeNotMember, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(positionResponse{QueueID: queueID, Position: rank})
	}
}
