// Package api exposes the recommendation service over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	"github.com/okian/replaytune/internal/adapters/http/swagger"
	service "github.com/okian/replaytune/internal/app"
	"github.com/okian/replaytune/internal/validation"
	"github.com/okian/replaytune/pkg/logger"
	"github.com/okian/replaytune/pkg/metrics"
)

const (
	defaultMaxBodyBytes = 1 << 20
	serviceName         = "song-recommendation-engine"
	apiVersion          = "1.0.0"
)

// Recommender is the part of the service the handlers call.
type Recommender interface {
	Recommend(ctx context.Context, req service.RecommendRequest) (*service.Recommendation, error)
	SubmitWebhook(ctx context.Context, req service.WebhookRequest) (*service.WebhookResult, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() service.Stats
}

// Dependencies bundles everything the handlers need.
type Dependencies interface {
	Recommender
	StatsProvider
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS allow list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithRateLimit sets the per-IP request budget per minute. 0 disables it.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute >= 0 {
			s.rateLimit = perMinute
		}
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the recommendation API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler
	webhookHandler   *WebhookHandler
	docsHandler      *DocsHandler

	allowedOrigins []string
	rateLimit      int
	maxBodyBytes   int64
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		allowedOrigins: []string{"*"},
		maxBodyBytes:   defaultMaxBodyBytes,
		logger:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.recommendHandler = NewRecommendHandler(deps, s.maxBodyBytes, s.logger)
	s.webhookHandler = NewWebhookHandler(deps, s.maxBodyBytes, s.logger)
	s.docsHandler = NewDocsHandler()
	return s
}

// Routes builds the chi router with every route and middleware attached.
func (s *Server) Routes(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if s.rateLimit > 0 {
		r.Use(httprate.Limit(s.rateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
			}),
		))
	}
	r.Use(MetricsMiddleware)

	r.Get("/", s.docsHandler.HandleIndex)
	r.Get("/health", s.healthHandler.HandleHealth)
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Post("/recommend", s.recommendHandler.HandleRecommend)
	r.Get("/recommend/test", s.recommendHandler.HandleRecommendTest)
	r.Post("/webhook/recommend", s.webhookHandler.HandleWebhook)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	swagger.Register(ctx, r)

	r.NotFound(s.docsHandler.HandleNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
	})

	s.logger.Info(ctx, "routes registered", logger.Int("endpoints", len(availableEndpoints)))
	return r
}

type errorResponse struct {
	Success bool                     `json:"success"`
	Error   string                   `json:"error"`
	Code    string                   `json:"code"`
	Fields  []validationFieldMessage `json:"fields,omitempty"`
}

type validationFieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Success: false, Error: msg, Code: code, Fields: fieldMessages(err)})
}

// writeServiceError maps a service error to its status and code.
func writeServiceError(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	code := service.ErrorCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.String("op", op), logger.String("code", code), logger.Error(err))
	}
	writeError(w, status, code, err)
}

func statusFor(code string) int {
	switch code {
	case service.CodePlayerNotFound, service.CodeMissingDuration, service.CodeBadRequest:
		return http.StatusBadRequest
	case service.CodeBackpressure:
		return http.StatusTooManyRequests
	case service.CodeCatalogUnavailable, service.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		if ke.Err != nil {
			return ke.Err.Error()
		}
		return ke.Kind.Error()
	}
	return err.Error()
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, op string, dst any) (int, string, error) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return http.StatusBadRequest, service.CodeBadRequest, NewKind(op, ErrUnsupportedType)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return http.StatusRequestEntityTooLarge, "payload_too_large", NewKind(op, ErrBodyTooLarge)
		}
		return http.StatusBadRequest, service.CodeBadRequest, WrapKind(op, ErrBadRequest, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return http.StatusBadRequest, service.CodeBadRequest, WrapKind(op, ErrBadRequest, err)
	}
	return 0, "", nil
}

func fieldMessages(err error) []validationFieldMessage {
	var verr *validation.Errors
	if err == nil || !errors.As(err, &verr) {
		return nil
	}
	out := make([]validationFieldMessage, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, validationFieldMessage{Field: f.Field, Message: f.Message})
	}
	return out
}
