package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	coreerrors "mosaicchain/core/errors"
	"mosaicchain/integrations/exports"
	"mosaicchain/observability"
	"mosaicchain/services/galleryd/app"
	"mosaicchain/services/galleryd/journal"
)

// JournalReader serves the history endpoints.
type JournalReader interface {
	Events(ctx context.Context, community string, after int64, limit int) ([]journal.Event, error)
	Ticks(ctx context.Context, community string) ([]exports.TickRow, error)
}

// Options configures the HTTP API.
type Options struct {
	App     *app.App
	Journal JournalReader
	// Idempotency enables Idempotency-Key replay for writes when set.
	Idempotency IdempotencyStore
	Logger      *slog.Logger
	Auth        AuthConfig
	RateLimit   RateLimit
}

// Server exposes the gallery API over HTTP.
type Server struct {
	app         *app.App
	journal     JournalReader
	idempotency IdempotencyStore
	logger      *slog.Logger
	auth        *Authenticator
	limiter     *RateLimiter
	router      http.Handler
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		app:         opts.App,
		journal:     opts.Journal,
		idempotency: opts.Idempotency,
		logger:      logger,
		auth:        NewAuthenticator(opts.Auth, logger),
		limiter:     NewRateLimiter(opts.RateLimit),
	}
	s.router = otelhttp.NewHandler(s.buildRouter(), "galleryd")
	return s
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.With(s.limiter.Middleware).Get("/communities", s.handleCommunities)
		v1.Route("/communities/{symbol}", func(c chi.Router) {
			c.Group(func(read chi.Router) {
				read.Use(s.limiter.Middleware)
				read.Get("/mosaics", s.handleListMosaics)
				read.Get("/mosaics/{id}", s.handleGetMosaic)
				read.Get("/mosaics/{id}/gems", s.handleListGems)
				read.Get("/messages/{author}/{permlink}", s.handleGetMessage)
				read.Get("/leaders", s.handleListLeaders)
				read.Get("/balances/{owner}", s.handleBalance)
				read.Get("/events", s.handleEvents)
				read.Get("/ticks.csv", s.handleTicksCSV)
				read.Get("/ticks.jsonl", s.handleTicksJSONL)
				read.Get("/ticks.parquet", s.handleTicksParquet)
			})
			c.Group(func(write chi.Router) {
				write.Use(s.auth.Middleware)
				write.Use(s.limiter.Middleware)
				write.Use(s.idempotent)

				write.Post("/mosaics", s.handleCreateMosaic)
				write.Post("/mosaics/{id}/gems", s.handleAddGem)
				write.Post("/mosaics/{id}/claim", s.handleClaim)
				write.Post("/mosaics/{id}/claim-by-creator", s.handleClaimByCreator)
				write.Post("/provisions", s.handleProvide)
				write.With(RequireScope(ScopeLeader)).Post("/advice", s.handleAdvice)
				write.With(RequireScope(ScopeLeader)).Post("/mosaics/{id}/slap", s.handleSlap)
				write.With(RequireScope(ScopeAdmin)).Post("/mosaics/{id}/ban", s.handleBan)
				write.With(RequireScope(ScopeAdmin)).Post("/tick", s.handleTick)

				write.Post("/messages", s.handleCreateMessage)
				write.Post("/messages/{author}/{permlink}/votes", s.handleVoteMessage)
				write.Delete("/messages/{author}/{permlink}/votes", s.handleUnvoteMessage)

				write.Post("/leaders", s.handleRegLeader)
				write.Post("/leaders/claim", s.handleClaimLeader)
				write.Post("/leaders/{leader}/votes", s.handleVoteLeader)
				write.Delete("/leaders/{leader}/votes", s.handleUnvoteLeader)

				write.Post("/transfer", s.handleTransfer)
				write.Post("/buy", s.handleBuy)
				write.Post("/sell", s.handleSell)
			})
		})
	})
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		observability.API().Observe(routeOf(r), r.Method, rec.status, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok, err := s.app.Bootstrapped()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "genesis not applied")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommunities(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.app.Communities()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"communities": symbols})
}

// statusFor maps an engine error kind to its HTTP status.
func statusFor(err error) int {
	switch coreerrors.KindOf(err) {
	case coreerrors.KindValidation:
		return http.StatusBadRequest
	case coreerrors.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case coreerrors.KindNotFound:
		return http.StatusNotFound
	case coreerrors.KindStateConflict:
		return http.StatusConflict
	case coreerrors.KindOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	attrs := []any{"route", routeOf(r), "method", r.Method, "status", status, "error", err}
	if symbol := chi.URLParam(r, "symbol"); symbol != "" {
		attrs = append(attrs, "community", symbol)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
		writeError(w, status, http.StatusText(status))
		return
	}
	s.logger.Info("request rejected", attrs...)
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("http server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}
