package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidStartsAt    = "invalid_starts_at"
	codeInvalidID          = "invalid_id"
	codeQueueNameRequired  = "queue_name_required"
	codeGroupNameRequired  = "group_name_required"
	codeUserNameRequired   = "user_name_required"
	codeQueueNotFound      = "queue_not_found"
	codeGroupNotFound      = "group_not_found"
	codeUserNotFound       = "user_not_found"
	codeNotMember          = "not_member"
	codeAlreadyLast        = "already_last"
	codeTooEarly           = "too_early"
	codeTooFar             = "too_far"
	codeLocationRequired   = "location_required"
	codeInvalidToken       = "invalid_token"
	codeCreatorMismatch    = "creator_mismatch"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
