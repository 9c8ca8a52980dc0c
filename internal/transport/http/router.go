package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vahe2002pog/tg-queue/internal/clock"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Logger         *log.Logger
	Clock          clock.Clock
	JWTSecret      []byte
	BotHost        string
	AllowedOrigins []string

	Users     Registrar
	Queues    QueueAdminService
	Admission AdmissionAPI
	Ordering  OrderingAPI
	Groups    GroupAPI
}

// NewRouter assembles the service's routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return RequestLogger(next, cfg.Logger)
	})
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return CORS(cfg.AllowedOrigins, next)
	})
	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", HealthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/register", HandleRegister(cfg.Users, cfg.JWTSecret, cfg.Clock))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return Auth(cfg.JWTSecret, next)
		})

		r.Route("/queues", func(r chi.Router) {
			r.Post("/", HandleCreateQueue(cfg.Queues))
			r.Get("/", HandleListQueues(cfg.Queues))
			r.Get("/open", HandleListOpenQueues(cfg.Queues))
			r.Route("/{queueID}", func(r chi.Router) {
				r.Get("/", HandleGetQueue(cfg.Queues))
				r.Delete("/", HandleDeleteQueue(cfg.Queues))
				r.Post("/invite", HandleInvite(cfg.Queues, cfg.BotHost))
				r.Post("/join", HandleJoinQueue(cfg.Admission))
				r.Post("/leave", HandleLeaveQueue(cfg.Ordering))
				r.Post("/skip", HandleSkipTurn(cfg.Ordering))
				r.Get("/members", HandleListMembers(cfg.Ordering))
				r.Get("/position", HandlePosition(cfg.Ordering))
			})
		})

		r.Post("/join", HandleInviteJoin(cfg.Admission))

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", HandleCreateGroup(cfg.Groups))
			r.Get("/", HandleListGroups(cfg.Groups))
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", HandleGetGroup(cfg.Groups))
				r.Delete("/", HandleDeleteGroup(cfg.Groups))
				r.Post("/join", HandleJoinGroup(cfg.Groups))
				r.Post("/leave", HandleLeaveGroup(cfg.Groups))
				r.Get("/members", HandleListGroupMembers(cfg.Groups))
				r.Get("/queues", HandleListGroupQueues(cfg.Queues))
			})
		})
	})

	return r
}
