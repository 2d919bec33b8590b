package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"roomdesk/internal/config"
	"roomdesk/internal/domain"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

// HeaderUserID carries the identity asserted by the upstream auth
// gateway. This core trusts it and only resolves it into an Actor.
const HeaderUserID = "X-User-Id"

// HTTPServer exposes the booking core over HTTP JSON. It is the single
// entry point consolidating what used to be per-screen logic.
type HTTPServer struct {
	cfg      config.Config
	bookings domain.BookingService
	rooms    domain.RoomService
	profiles domain.ProfileService
	limiter  *RateLimiter
	logger   *zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(cfg config.Config, bookings domain.BookingService, rooms domain.RoomService, profiles domain.ProfileService, limiter *RateLimiter, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		rooms:    rooms,
		profiles: profiles,
		limiter:  limiter,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("GET /api/v1/rooms", srv.withActor(srv.handleListRooms))
	mux.HandleFunc("GET /api/v1/rooms/{id}/bookings", srv.withActor(srv.handleRoomBookings))
	mux.HandleFunc("GET /api/v1/rooms/{id}/availability", srv.withActor(srv.handleAvailability))
	mux.HandleFunc("POST /api/v1/bookings", srv.withActor(srv.handleCreateBooking))
	mux.HandleFunc("GET /api/v1/bookings", srv.withActor(srv.handleListBookings))
	mux.HandleFunc("POST /api/v1/bookings/{id}/approve", srv.withActor(srv.handleApprove))
	mux.HandleFunc("POST /api/v1/bookings/{id}/reject", srv.withActor(srv.handleReject))
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", srv.withActor(srv.handleCancel))
	mux.HandleFunc("GET /api/v1/export/bookings", srv.withActor(srv.handleExport))

	handler := srv.loggingMiddleware(mux)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

type actorHandler func(w http.ResponseWriter, r *http.Request, actor models.Actor)

// withActor resolves the asserted user id into an explicit Actor and
// applies rate limiting before handing off.
func (s *HTTPServer) withActor(next actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing "+HeaderUserID+" header")
			return
		}

		actor, err := s.profiles.ResolveActor(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			s.logger.Error().Err(err).Str("user_id", userID).Msg("actor resolution error")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if s.limiter != nil {
			allowed, err := s.limiter.Allow(r.Context(), actor.ID)
			if err != nil {
				s.logger.Warn().Err(err).Str("user_id", actor.ID).Msg("rate limit check error")
			}
			if !allowed {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}

		next(w, r, actor)
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = r.URL.Path
		}
		metrics.IncHTTP(endpoint)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
