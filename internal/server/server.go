package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/events"
	"github.com/jonathan/jobboard/internal/ranking"
	"github.com/jonathan/jobboard/internal/resume"
	"github.com/jonathan/jobboard/internal/retention"
	"github.com/jonathan/jobboard/internal/server/middleware"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
	"github.com/jonathan/jobboard/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       db.Store
	ranker      *ranking.Ranker
	extractor   *resume.Extractor
	publisher   events.Publisher
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	scheduler   *retention.Scheduler
	validate    *validator.Validate
	corsOrigin  string
	logger      *zap.Logger
	now         func() time.Time
}

// Config holds server configuration and dependencies.
// Store, JWT and Password are required; the rest fall back to defaults.
type Config struct {
	Addr         string
	CORSOrigin   string
	CookieSecure bool

	Store     db.Store
	Publisher events.Publisher
	Scheduler *retention.Scheduler
	RateLimit *ratelimit.Config
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	Ranker    *ranking.Ranker
	Extractor *resume.Extractor
	Logger    *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if cfg.JWT == nil || cfg.Password == nil {
		return nil, errors.New("server: JWT and password configs are required")
	}

	s := &Server{
		store:      cfg.Store,
		ranker:     cfg.Ranker,
		extractor:  cfg.Extractor,
		publisher:  cfg.Publisher,
		scheduler:  cfg.Scheduler,
		validate:   types.NewValidator(),
		corsOrigin: cfg.CORSOrigin,
		logger:     cfg.Logger,
		now:        time.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}

	var err error
	if s.ranker == nil {
		if s.ranker, err = ranking.NewRanker(); err != nil {
			return nil, fmt.Errorf("failed to create ranker: %w", err)
		}
	}
	if s.extractor == nil {
		if s.extractor, err = resume.NewExtractor(); err != nil {
			return nil, fmt.Errorf("failed to create resume extractor: %w", err)
		}
	}

	s.rateLimiter = ratelimit.NewLimiter(cfg.RateLimit)
	s.jwtService = NewJWTService(cfg.JWT)
	userService := NewUserService(cfg.Store, cfg.Password)
	s.authHandler = NewAuthHandler(userService, s.jwtService, cfg.CookieSecure, s.logger.Named("auth"))

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	requireAuth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	optionalAuth := middleware.OptionalAuthMiddleware(s.jwtService.AsTokenValidator())
	protect := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }
	identify := func(h http.HandlerFunc) http.Handler { return optionalAuth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Matching and resume analysis
	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	mux.HandleFunc("POST /api/resume-analyze", s.handleResumeAnalyze)
	mux.HandleFunc("POST /api/resume-analyze/upload", s.handleResumeUpload)

	// Internships
	mux.HandleFunc("GET /api/internships", s.handleListInternships)
	mux.HandleFunc("GET /api/internships/{id}", s.handleGetInternship)
	mux.Handle("POST /api/internships", protect(s.handleCreateInternship))
	mux.Handle("DELETE /api/internships", protect(s.handleDeleteInternship))
	mux.Handle("DELETE /api/internships/{id}", protect(s.handleDeleteInternship))
	mux.HandleFunc("GET /api/recruiters/{username}/internships", s.handleListRecruiterInternships)

	// Freelance gigs
	mux.HandleFunc("GET /api/jobs/freelance", s.handleListFreelanceJobs)
	mux.Handle("POST /api/jobs/freelance", protect(s.handleCreateFreelanceJob))

	// Applications and bookmarks
	mux.HandleFunc("GET /api/applications", s.handleListApplications)
	mux.HandleFunc("POST /api/applications", s.handleCreateApplication)
	mux.Handle("GET /api/bookmarks", identify(s.handleListBookmarks))
	mux.Handle("POST /api/bookmarks", identify(s.handleToggleBookmark))

	// Recruiter verification and progress tracker
	mux.HandleFunc("GET /api/recruiter", s.handleGetRecruiter)
	mux.Handle("POST /api/recruiter", protect(s.handleSetRecruiter))
	mux.Handle("GET /api/progress", identify(s.handleGetProgress))
	mux.Handle("POST /api/progress", identify(s.handleUpdateProgress))

	// Analytics and voice notes
	mux.HandleFunc("GET /api/track", s.handleListEvents)
	mux.Handle("POST /api/track", identify(s.handleTrack))
	mux.HandleFunc("GET /api/voice-notes", s.handleListVoiceNotes)
	mux.HandleFunc("POST /api/voice-notes", s.handleCreateVoiceNote)

	// Accounts
	mux.HandleFunc("POST /api/auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.Logout)
	mux.Handle("GET /api/auth/me", protect(s.authHandler.Me))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
// The retention scheduler, if any, runs alongside the HTTP server.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if s.scheduler != nil {
		if err := s.scheduler.Start(gctx); err != nil {
			return err
		}
	}

	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if s.scheduler != nil {
			s.scheduler.Stop()
		}
		s.rateLimiter.Stop()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if s.corsOrigin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.logger.Warn("rate limit exceeded",
				zap.String("client", clientID),
				zap.String("tier", info.Tier),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Error("request", fields...)
			return
		}
		s.logger.Info("request", fields...)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.logger, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeError(w, s.logger, status, message)
}

// storeError writes the response for an error returned by the store or a service.
func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op, zap.Error(err))
	}
	s.errorResponse(w, status, clientMessage(err))
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("encoding JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]string{"error": message})
}

// extractClientID returns the client IP from RemoteAddr.
// X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error": "Too Many Requests",
	}

	if info.RetryAfter > 0 {
		// Round up so clients never retry early
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
