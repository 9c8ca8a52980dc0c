package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vahe2002pog/tg-queue/internal/app"
	"github.com/vahe2002pog/tg-queue/internal/domain"
)

type stubQueueService struct {
	queue     domain.Queue
	queues    []domain.Queue
	token     string
	createErr error
	getErr    error
	deleteErr error
	inviteErr error
	gotInput  app.CreateQueueInput
}

func (s *stubQueueService) CreateQueue(_ context.Context, in app.CreateQueueInput) (domain.Queue, error) {
	s.gotInput = in
	if s.createErr != nil {
		return domain.Queue{}, s.createErr
	}
	return s.queue, nil
}

func (s *stubQueueService) GetQueue(context.Context, int64) (domain.Queue, error) {
	if s.getErr != nil {
		return domain.Queue{}, s.getErr
	}
	return s.queue, nil
}

func (s *stubQueueService) ListQueues(context.Context, int64) ([]domain.Queue, error) {
	return s.queues, nil
}

func (s *stubQueueService) ListOpenQueues(context.Context) ([]domain.Queue, error) {
	return s.queues, nil
}

func (s *stubQueueService) ListGroupQueues(context.Context, int64) ([]domain.Queue, error) {
	return s.queues, nil
}

func (s *stubQueueService) DeleteQueue(context.Context, int64, int64) error { return s.deleteErr }

func (s *stubQueueService) InviteToken(context.Context, int64, int64) (string, error) {
	if s.inviteErr != nil {
		return "", s.inviteErr
	}
	return s.token, nil
}

func queueRouter(svc *stubQueueService, botHost string) http.Handler {
	r := chi.NewRouter()
	r.Post("/queues", HandleCreateQueue(svc))
	r.Get("/queues", HandleListQueues(svc))
	r.Get("/queues/open", HandleListOpenQueues(svc))
	r.Get("/groups/{groupID}/queues", HandleListGroupQueues(svc))
	r.Get("/queues/{queueID}", HandleGetQueue(svc))
	r.Delete("/queues/{queueID}", HandleDeleteQueue(svc))
	r.Post("/queues/{queueID}/invite", HandleInvite(svc, botHost))
	return r
}

func TestHandleCreateQueue(t *testing.T) {
	t.Parallel()

	created := domain.Queue{
		ID:        5,
		Name:      "morning pickup",
		CreatorID: 100,
		Latitude:  57.159312,
		Longitude: 65.522508,
		StartsAt:  time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"name":"morning pickup","latitude":57.159312,"longitude":65.522508,"starts_at":"2025-06-01T08:00:00Z"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"id":5`,
		},
		{
			name:           "with unlock window",
			body:           `{"name":"morning pickup","latitude":57.159312,"longitude":65.522508,"starts_at":"2025-06-01T08:00:00Z","unlocked_after":"2025-06-01T18:00:00Z"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidRequestBody,
		},
		{
			name:           "missing name",
			body:           `{"latitude":1,"longitude":2,"starts_at":"2025-06-01T08:00:00Z"}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeQueueNameRequired,
		},
		{
			name:           "bad starts_at",
			body:           `{"name":"q","latitude":1,"longitude":2,"starts_at":"tomorrow"}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidStartsAt,
		},
		{
			name:           "bad unlocked_after",
			body:           `{"name":"q","latitude":1,"longitude":2,"starts_at":"2025-06-01T08:00:00Z","unlocked_after":"18:00"}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidStartsAt,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubQueueService{queue: created, createErr: tc.serviceErr}
			router := queueRouter(svc, "https://t.me/queue_bot")

			req := authedRequest(http.MethodPost, "/queues", tc.body, 100)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %s", tc.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleCreateQueue_CreatorFromToken(t *testing.T) {
	t.Parallel()

	svc := &stubQueueService{}
	router := queueRouter(svc, "https://t.me/queue_bot")

	body := `{"name":"q","latitude":1,"longitude":2,"starts_at":"2025-06-01T08:00:00Z"}`
	req := authedRequest(http.MethodPost, "/queues", body, 777)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if svc.gotInput.CreatorID != 777 {
		t.Fatalf("expected creator 777, got %d", svc.gotInput.CreatorID)
	}
}

func TestHandleDeleteQueue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", expectedStatus: http.StatusNoContent},
		{name: "not found", serviceErr: domain.ErrQueueNotFound, expectedStatus: http.StatusNotFound},
		{name: "forbidden", serviceErr: domain.ErrForbidden, expectedStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubQueueService{deleteErr: tc.serviceErr}
			router := queueRouter(svc, "https://t.me/queue_bot")

			req := authedRequest(http.MethodDelete, "/queues/5", "", 100)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleInvite_BuildsDeepLink(t *testing.T) {
	t.Parallel()

	svc := &stubQueueService{token: "00112233445566778899aabbccddeeff"}
	router := queueRouter(svc, "https://t.me/queue_bot")

	req := authedRequest(http.MethodPost, "/queues/5/invite", "", 100)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp inviteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := "https://t.me/queue_bot?start=join_00112233445566778899aabbccddeeff"
	if resp.Link != want {
		t.Fatalf("expected link %q, got %q", want, resp.Link)
	}
}

func TestHandleInvite_NonCreatorRefused(t *testing.T) {
	t.Parallel()

	svc := &stubQueueService{inviteErr: domain.ErrForbidden}
	router := queueRouter(svc, "https://t.me/queue_bot")

	req := authedRequest(http.MethodPost, "/queues/5/invite", "", 100)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestHandleListGroupQueues(t *testing.T) {
	t.Parallel()

	svc := &stubQueueService{queues: []domain.Queue{{ID: 5, Name: "attached"}}}
	router := queueRouter(svc, "https://t.me/queue_bot")

	req := authedRequest(http.MethodGet, "/groups/9/queues", "", 100)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"attached"`) {
		t.Fatalf("expected attached queue in body, got %s", rec.Body.String())
	}
}

func TestHandleGetQueue_NotFound(t *testing.T) {
	t.Parallel()

	svc := &stubQueueService{getErr: domain.ErrQueueNotFound}
	router := queueRouter(svc, "https://t.me/queue_bot")

	req := authedRequest(http.MethodGet, "/queues/5", "", 100)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), codeQueueNotFound) {
		t.Fatalf("expected queue_not_found code, got %s", rec.Body.String())
	}
}
