package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vahe2002pog/tg-queue/internal/clock"
	"github.com/vahe2002pog/tg-queue/internal/domain"
)

// Registrar is the minimal interface needed for the register endpoint.
type Registrar interface {
	Register(ctx context.Context, userID int64, name string) (domain.User, error)
}

type registerRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type registerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// HandleRegister returns an HTTP handler that records the member's
// display name and issues a bearer token. Registering again refreshes
// both.
func HandleRegister(svc Registrar, jwtSecret []byte, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.ID <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
			return
		}

		user, err := svc.Register(r.Context(), req.ID, req.Name)
		if err != nil {
			if errors.Is(err, domain.ErrUserNameRequired) {
				writeError(w, http.StatusBadRequest, codeUserNameRequired, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		token, err := IssueToken(jwtSecret, user.ID, clk.Now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(registerResponse{
			ID:    user.ID,
			Name:  user.Name,
			Token: token,
		})
	}
}
