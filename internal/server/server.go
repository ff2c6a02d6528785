package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/service-lgtm/pw-next-sub000/internal/database"
	"github.com/service-lgtm/pw-next-sub000/internal/handler"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
	"github.com/service-lgtm/pw-next-sub000/internal/metrics"
	"github.com/service-lgtm/pw-next-sub000/internal/sse"
)

// Options configures the HTTP listener and its middleware
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Deps are the services behind the API. Pool, Cache, History and Stream may be nil.
type Deps struct {
	Pool      database.Pool
	Sessions  handler.SessionService
	Preflight handler.Preflighter
	Tools     handler.ToolLister
	Emission  handler.EmissionReader
	Rates     handler.RateAdmin
	Limits    handler.LimitSetter
	Rollover  handler.RolloverTrigger
	Cache     handler.CacheStatsProvider
	History   handler.HistoryReader
	Stream    *sse.Hub
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewRouter builds the middleware stack and routes
func NewRouter(opts Options, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector(opts.RateLimitRPS, opts.RateLimitBurst)

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(maxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.Pool))
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	mining := handler.NewMiningHandler(deps.Sessions, deps.Preflight, deps.Tools, deps.Emission)
	admin := handler.NewAdminHandler(deps.Rates, deps.Limits, deps.Rollover)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/mining", func(r chi.Router) {
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", mining.HandleStartSession)
				r.Get("/", mining.HandleListSessions)
				r.Post("/stop-all", mining.HandleStopAll)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", mining.HandleGetSession)
					r.Post("/stop", mining.HandleStopSession)
					r.Post("/tools/add", mining.HandleAddTools)
					r.Post("/tools/remove", mining.HandleRemoveTools)
				})
			})
			r.Get("/summary", mining.HandleSummary)
			r.Post("/preflight", mining.HandlePreflight)
			r.Get("/emission", mining.HandleEmission)

			if deps.History != nil {
				r.Get("/history", handler.NewHistoryHandler(deps.History).HandleHistory)
			}
			if deps.Stream != nil {
				r.Get("/stream", sse.Handler(deps.Stream, handler.HeaderUserID))
			}
		})

		r.Get("/tools/available", mining.HandleAvailableTools)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/rates", admin.HandleGetRates)
			r.Put("/rates", admin.HandleSetRate)
			r.Put("/emission/limit", admin.HandleSetEmissionLimit)
			r.Post("/emission/rollover", admin.HandleRollover)

			if deps.Cache != nil {
				r.Get("/cache/stats", handler.NewAdminCacheHandler(deps.Cache).HandleGetCacheStats)
			}
		})
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush lets streaming handlers push through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Generate unique request ID
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Get scoped logger
		log := logger.FromContext(ctx)

		// Log request start with details
		log.Info(LogMsgRequestStarted,
			"user_id", r.Header.Get(handler.HeaderUserID),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		// Wrap response writer to capture status code
		rw := newResponseWriter(w)

		// Process request
		next.ServeHTTP(rw, r)

		// Log request completion with metrics
		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
