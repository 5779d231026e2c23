// Package service wires the profile pipeline, the song catalog and webhook
// delivery into the operations the HTTP API and the CLI expose.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/okian/replaytune/internal/adapters/mq/queue"
	"github.com/okian/replaytune/internal/adapters/mq/worker"
	"github.com/okian/replaytune/internal/adapters/repository"
	"github.com/okian/replaytune/internal/adapters/webhook"
	"github.com/okian/replaytune/internal/domain/dedupe"
	"github.com/okian/replaytune/internal/domain/matching"
	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/internal/domain/profile"
	"github.com/okian/replaytune/internal/sample"
	"github.com/okian/replaytune/internal/validation"
	"github.com/okian/replaytune/pkg/logger"
	"github.com/okian/replaytune/pkg/metrics"
)

const (
	defaultCatalogPath = "data/songs.json"
	defaultTopN        = 3
	defaultMaxTopN     = 50
	defaultQueueSize   = 10_000
	defaultDedupeSize  = 100_000
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond

	webhookMessage = "Recommendation processed"
)

// RecommendRequest asks for recommendations for one player. A nil Replay
// selects the embedded sample replay; a nil TopN selects the default.
type RecommendRequest struct {
	PlayerID string            `json:"player_id" validate:"required,max=128"`
	Replay   *model.GameRecord `json:"replay_data,omitempty"`
	TopN     *int              `json:"top_n,omitempty"`
}

// WebhookRequest is a RecommendRequest whose result may also be delivered
// to CallbackURL. RequestID, when set, makes the submission idempotent.
type WebhookRequest struct {
	RecommendRequest
	CallbackURL string `json:"callback_url,omitempty" validate:"omitempty,httpurl,max=2048"`
	RequestID   string `json:"request_id,omitempty" validate:"omitempty,max=128"`
}

// Metadata describes how a Recommendation was produced.
type Metadata struct {
	UsedSampleData bool      `json:"used_sample_data"`
	Timestamp      string    `json:"timestamp,omitempty"`
	RequestID      string    `json:"request_id"`
	ProcessedAt    time.Time `json:"processed_at"`
	Webhook        bool      `json:"webhook,omitempty"`
	DeliveryID     string    `json:"delivery_id,omitempty"`
}

// Recommendation is the full answer for one player.
type Recommendation struct {
	Success         bool                         `json:"success"`
	PlayerID        string                       `json:"player_id"`
	Profile         profile.Report               `json:"profile"`
	Recommendations []model.RankedRecommendation `json:"recommendations"`
	Metadata        Metadata                     `json:"metadata"`
}

// WebhookResult is the synchronous answer to a webhook submission.
type WebhookResult struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Duplicate  bool            `json:"duplicate,omitempty"`
	Queued     bool            `json:"queued,omitempty"`
	DeliveryID string          `json:"delivery_id,omitempty"`
	Result     *Recommendation `json:"result,omitempty"`
}

// Stats is a point-in-time view of the service.
type Stats struct {
	Started         bool       `json:"started"`
	WorkerCount     int        `json:"worker_count"`
	QueueLength     int        `json:"queue_length"`
	QueueCapacity   int        `json:"queue_capacity"`
	DedupeEntries   int64      `json:"dedupe_entries"`
	CatalogSongs    int        `json:"catalog_songs"`
	CatalogSkipped  int        `json:"catalog_skipped"`
	CatalogSource   string     `json:"catalog_source,omitempty"`
	CatalogLoadedAt *time.Time `json:"catalog_loaded_at,omitempty"`
	BreakerState    string     `json:"breaker_state,omitempty"`
	DefaultTopN     int        `json:"default_top_n"`
	MaxTopN         int        `json:"max_top_n"`
	SamplePlayerIDs []string   `json:"sample_player_ids"`
}

// Service implements the recommendation operations.
type Service struct {
	mu sync.RWMutex

	builder   *profile.Builder
	matcher   *matching.Matcher
	catalog   repository.Catalog
	deliverer worker.Deliverer

	deduper dedupe.Deduper
	queue   queue.Queue
	pool    *worker.Pool
	cancel  context.CancelFunc

	workerCount int
	queueSize   int
	dedupeSize  int
	defaultTopN int
	maxTopN     int
	maxAttempts int
	backoff     time.Duration

	started bool
	logger  logger.Logger
}

// New constructs a Service. Components not supplied through options get
// their defaults, including a catalog read lazily from data/songs.json.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		defaultTopN: defaultTopN,
		maxTopN:     defaultMaxTopN,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.builder == nil {
		s.builder = profile.New()
	}
	if s.matcher == nil {
		s.matcher = matching.New()
	}
	if s.catalog == nil {
		s.catalog = repository.NewCatalogStore(
			repository.NewLoader(defaultCatalogPath, repository.WithLoaderLogger(s.logger.Named("catalog"))),
			repository.WithLogger(s.logger.Named("catalog")),
		)
	}
	return s
}

// Start creates the dedupe cache and delivery queue and starts the worker
// pool. Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting recommendation service...")

	if s.deliverer == nil {
		s.deliverer = webhook.NewClient(webhook.WithLogger(s.logger.Named("webhook")))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.deliverer,
		worker.WithMaxAttempts(s.maxAttempts),
		worker.WithBackoff(s.backoff),
		worker.WithLogger(s.logger.Named("worker")),
	)

	// Workers outlive the caller's ctx; Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the delivery queue and waits for queued deliveries until ctx
// expires, then cancels whatever is still running.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping recommendation service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	if err != nil {
		s.logger.Warn(ctx, "delivery workers did not drain", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "recommendation service stopped")
	return nil
}

// ComputeProfile runs the profile pipeline for one player of game.
func (s *Service) ComputeProfile(ctx context.Context, game model.GameRecord, playerID string) (profile.Report, error) {
	start := time.Now()
	report, err := s.builder.Compute(game, playerID)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		code := ErrorCode(err)
		metrics.RecordProfile(code, elapsed)
		s.logger.Info(ctx, "profile not computed",
			logger.String("player_id", playerID),
			logger.String("kind", code),
			logger.Error(err),
		)
		return profile.Report{}, err
	}
	metrics.RecordProfile("ok", elapsed)
	return report, nil
}

// Recommend computes the profile for req and ranks the catalog against it.
// Errors match ErrInvalidRequest, the extract kinds, or the repository
// catalog kinds.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*Recommendation, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, verr)
	}
	return s.recommend(ctx, req, "")
}

func (s *Service) recommend(ctx context.Context, req RecommendRequest, requestID string) (*Recommendation, error) {
	game, usedSample, err := s.replay(req.Replay)
	if err != nil {
		return nil, err
	}

	report, err := s.ComputeProfile(ctx, game, req.PlayerID)
	if err != nil {
		return nil, err
	}

	songs, err := s.catalog.Songs(ctx)
	if err != nil {
		return nil, err
	}

	topN := s.topN(req.TopN)
	start := time.Now()
	ranked := s.matcher.Rank(songs, report.DesiredSongProfile, topN)
	metrics.RecordRecommendations(len(ranked), float64(time.Since(start).Microseconds())/1000)

	if requestID == "" {
		requestID = req.PlayerID + "_" + strconv.Itoa(topN)
	}
	return &Recommendation{
		Success:         true,
		PlayerID:        req.PlayerID,
		Profile:         report,
		Recommendations: ranked,
		Metadata: Metadata{
			UsedSampleData: usedSample,
			Timestamp:      game.Date,
			RequestID:      requestID,
			ProcessedAt:    time.Now().UTC(),
		},
	}, nil
}

// SubmitWebhook answers req synchronously and, when a callback URL is set,
// queues the same answer for delivery. A repeated RequestID is reported as
// a duplicate without recomputing. A full queue yields ErrBackpressure and
// frees the RequestID for a retry.
func (s *Service) SubmitWebhook(ctx context.Context, req WebhookRequest) (*WebhookResult, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.RecordWebhookSubmission("invalid")
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, verr)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	if req.RequestID != "" && s.deduper.SeenAndRecord(ctx, req.RequestID) {
		metrics.RecordWebhookSubmission("duplicate")
		s.logger.Debug(ctx, "duplicate webhook request", logger.String("request_id", req.RequestID))
		return &WebhookResult{Success: true, Message: "duplicate", Duplicate: true}, nil
	}

	rec, err := s.recommend(ctx, req.RecommendRequest, req.RequestID)
	if err != nil {
		s.forget(ctx, req.RequestID)
		metrics.RecordWebhookSubmission("failed")
		return nil, err
	}
	rec.Metadata.Webhook = true

	res := &WebhookResult{Success: true, Message: webhookMessage, Result: rec}
	if req.CallbackURL == "" {
		metrics.RecordWebhookSubmission("processed")
		return res, nil
	}

	deliveryID := uuid.NewString()
	rec.Metadata.DeliveryID = deliveryID
	payload, err := json.Marshal(WebhookResult{Success: true, Message: webhookMessage, DeliveryID: deliveryID, Result: rec})
	if err != nil {
		s.forget(ctx, req.RequestID)
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	job := model.DeliveryJob{
		DeliveryID:  deliveryID,
		CallbackURL: req.CallbackURL,
		RequestID:   req.RequestID,
		Payload:     payload,
		EnqueuedAt:  time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.forget(ctx, req.RequestID)
		metrics.RecordWebhookSubmission("backpressure")
		s.logger.Warn(ctx, "webhook delivery rejected",
			logger.String("delivery_id", deliveryID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}

	metrics.RecordWebhookSubmission("queued")
	res.Queued = true
	res.DeliveryID = deliveryID
	return res, nil
}

// ReloadCatalog re-reads the catalog when the configured catalog supports it.
func (s *Service) ReloadCatalog(ctx context.Context) error {
	r, ok := s.catalog.(interface{ Reload(context.Context) error })
	if !ok {
		return nil
	}
	return r.Reload(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:         s.started,
		WorkerCount:     s.workerCount,
		QueueCapacity:   s.queueSize,
		DefaultTopN:     s.defaultTopN,
		MaxTopN:         s.maxTopN,
		SamplePlayerIDs: sample.PlayerIDs(),
	}

	if s.started {
		st.WorkerCount = s.pool.Size()
		st.QueueLength = s.queue.Len()
		st.QueueCapacity = s.queue.Cap()
		st.DedupeEntries = s.deduper.Size()
		metrics.UpdateQueueSize(st.QueueLength)
	}
	if snap, ok := s.catalog.(interface{ Snapshot() *repository.Snapshot }); ok {
		if cur := snap.Snapshot(); cur != nil {
			loaded := cur.LoadedAt
			st.CatalogSongs = len(cur.Songs)
			st.CatalogSkipped = len(cur.Skipped)
			st.CatalogSource = cur.Source
			st.CatalogLoadedAt = &loaded
		}
	}
	if b, ok := s.deliverer.(interface{ State() string }); ok {
		st.BreakerState = b.State()
	}
	return st
}

// DefaultTopN returns the number of songs returned when a request omits top_n.
func (s *Service) DefaultTopN() int {
	return s.defaultTopN
}

// replay returns g, or the embedded sample when g is absent or empty.
func (s *Service) replay(g *model.GameRecord) (model.GameRecord, bool, error) {
	if g != nil && !g.IsEmpty() {
		return *g, false, nil
	}
	game, err := sample.Replay()
	if err != nil {
		return model.GameRecord{}, true, err
	}
	return game, true, nil
}

// topN applies the default and caps at maxTopN. Non-positive values pass
// through and produce an empty list.
func (s *Service) topN(n *int) int {
	if n == nil {
		return s.defaultTopN
	}
	if *n > s.maxTopN {
		return s.maxTopN
	}
	return *n
}

func (s *Service) forget(ctx context.Context, requestID string) {
	if requestID != "" {
		s.deduper.Unrecord(ctx, requestID)
	}
}
