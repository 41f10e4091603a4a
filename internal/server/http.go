package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lgs-tracker/internal/config"
	"github.com/gokatarajesh/lgs-tracker/internal/dashboard"
	"github.com/gokatarajesh/lgs-tracker/internal/logging"
	"github.com/gokatarajesh/lgs-tracker/internal/ranking"
	httperrors "github.com/gokatarajesh/lgs-tracker/pkg/http/errors"
)

// Pinger is a dependency that can report its availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handlers groups the route handlers. Nil members leave their routes unregistered.
type Handlers struct {
	Dashboard *dashboard.HTTPHandlers
	Ranking   *ranking.HTTPHandler
	Metrics   http.Handler
}

// NewHTTPServer wires base routes (health, metrics) and the API for the service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps map[string]Pinger, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg.CORS, logger, deps, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the routed, middleware-wrapped handler.
func NewHandler(corsCfg config.CORS, logger zerolog.Logger, deps map[string]Pinger, h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	metrics := h.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	mux.Handle("GET /metrics", metrics)

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), deps); err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "dependency unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if d := h.Dashboard; d != nil {
		mux.HandleFunc("GET /v1/curriculum", d.Curriculum)
		mux.HandleFunc("GET /v1/dashboard", d.Overview)
		mux.HandleFunc("GET /v1/export.xlsx", d.Export)

		mux.HandleFunc("GET /v1/results", d.ListTests)
		mux.HandleFunc("POST /v1/results", d.RecordTest)
		mux.HandleFunc("PUT /v1/results/{id}", d.UpdateTest)
		mux.HandleFunc("DELETE /v1/results/{id}", d.DeleteTest)

		mux.HandleFunc("GET /v1/exams", d.ExamOverview)
		mux.HandleFunc("POST /v1/exams", d.RecordExam)
		mux.HandleFunc("DELETE /v1/exams/{id}", d.DeleteExam)

		mux.HandleFunc("GET /v1/mistakes", d.Mistakes)
		mux.HandleFunc("POST /v1/mistakes", d.AddMistake)
		mux.HandleFunc("PATCH /v1/mistakes/{id}", d.UpdateMistake)

		mux.HandleFunc("PUT /v1/goals", d.SetGoals)
	}

	if h.Ranking != nil {
		mux.HandleFunc("GET /v1/rankings/{window}", h.Ranking.HandleGet)
	}

	withCORS := cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	})
	return withCORS(requestLogger(logger, mux))
}

func pingDependencies(ctx context.Context, deps map[string]Pinger) error {
	for name, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			return &dependencyError{name: name, err: err}
		}
	}
	return nil
}

type dependencyError struct {
	name string
	err  error
}

func (e *dependencyError) Error() string { return e.name + ": " + e.err.Error() }

func (e *dependencyError) Unwrap() error { return e.err }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger attaches a request-scoped logger to the context and logs each response.
func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := logger.With().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		if user := r.Header.Get(dashboard.UserHeader); user != "" {
			reqLogger = reqLogger.With().Str("user_id", user).Logger()
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))

		reqLogger.Debug().
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
