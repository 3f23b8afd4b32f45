package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gatherhub/server/internal/api/handlers"
	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/config"
	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/registrations"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/metrics"
	"github.com/gatherhub/server/internal/storage/postgres"
)

// NewRouter wires repositories, services, handlers, and middleware.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, version string) (http.Handler, error) {
	repo, err := postgres.NewRepository(pool, cfg.Database.QueryTimeout)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, cfg.Auth.JWTIssuer)

	usersService := users.NewService(repo.Users(), logger)
	eventsService := events.NewService(repo.Events(), logger)
	regService := registrations.NewService(repo.Registrations(), logger)

	authHandler := handlers.NewAuthHandler(usersService, tokens, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, regService, cfg.Environment)
	regHandler := handlers.NewRegistrationsHandler(regService, cfg.Environment)
	health := handlers.NewHealthChecker(pool, version)

	requireUser := middleware.RequireUser(tokens, usersService, cfg.Environment)
	optionalUser := middleware.OptionalUser(tokens, usersService)

	mux := http.NewServeMux()

	mux.Handle("/health", health.Health())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/auth/signup", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Signup),
	}))
	mux.Handle("/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))
	mux.Handle("/auth/me", methodMux(map[string]http.Handler{
		http.MethodGet: requireUser(http.HandlerFunc(authHandler.Me)),
	}))

	mux.Handle("/events", methodMux(map[string]http.Handler{
		http.MethodGet:  optionalUser(http.HandlerFunc(eventsHandler.List)),
		http.MethodPost: requireUser(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    optionalUser(http.HandlerFunc(eventsHandler.Get)),
		http.MethodPut:    requireUser(http.HandlerFunc(eventsHandler.Update)),
		http.MethodDelete: requireUser(http.HandlerFunc(eventsHandler.Delete)),
	}))
	mux.Handle("/events/{id}/register", methodMux(map[string]http.Handler{
		http.MethodPost:   requireUser(http.HandlerFunc(regHandler.Register)),
		http.MethodDelete: requireUser(http.HandlerFunc(regHandler.Unregister)),
	}))

	mux.Handle("/my-registrations", methodMux(map[string]http.Handler{
		http.MethodGet: requireUser(http.HandlerFunc(regHandler.MyRegistrations)),
	}))
	mux.Handle("/my-events", methodMux(map[string]http.Handler{
		http.MethodGet: requireUser(http.HandlerFunc(eventsHandler.MyEvents)),
	}))

	var handler http.Handler = mux
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = loginTier(handler)
	handler = metrics.InstrumentHTTP(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler, nil
}

// loginTier tags login attempts before the rate limiter reads the tier from
// the request context.
func loginTier(next http.Handler) http.Handler {
	tagged := middleware.WithRateLimitTier(middleware.TierLogin)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			tagged.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
