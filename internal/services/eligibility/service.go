// Package eligibility wires the matcher to farmer storage, the scheme
// source, the result cache and email notifications.
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kisanmitra-scheme-engine/internal/metrics"
	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/services/matcher"
	"kisanmitra-scheme-engine/internal/utils"
)

// ErrNoFarmerStore is returned by operations that need persisted farmers
// when the service runs without a database.
var ErrNoFarmerStore = errors.New("farmer storage is not configured")

// FarmerStore persists farmer profiles.
type FarmerStore interface {
	Create(ctx context.Context, farmer *models.FarmerProfile) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.FarmerProfile, error)
	GetAll(ctx context.Context) ([]*models.FarmerProfile, error)
	GetByBatchID(ctx context.Context, batchID string) ([]*models.FarmerProfile, error)
	Delete(ctx context.Context, id int64) error
	BulkInsert(ctx context.Context, farmers []*models.FarmerProfile) (*models.BulkInsertResult, error)
}

// SchemeSource lists the schemes farmers are matched against.
type SchemeSource interface {
	ListSchemes(ctx context.Context) ([]*models.Scheme, error)
}

// ResultCache caches ranked results for a profile and scheme list.
type ResultCache interface {
	Get(ctx context.Context, profile *models.FarmerProfile, schemes []*models.Scheme) ([]models.MatchResult, bool, error)
	Set(ctx context.Context, profile *models.FarmerProfile, schemes []*models.Scheme, results []models.MatchResult) error
	Invalidate(ctx context.Context, farmerID int64) error
}

// Notifier delivers eligibility digests to farmers.
type Notifier interface {
	SendEligibilityDigest(ctx context.Context, profile *models.FarmerProfile, results []models.MatchResult) error
}

// Service matches farmers against schemes.
type Service struct {
	schemes  SchemeSource
	farmers  FarmerStore
	cache    ResultCache
	notifier Notifier
	matcher  *matcher.Matcher
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFarmerStore enables the operations on stored farmers.
func WithFarmerStore(store FarmerStore) Option {
	return func(s *Service) { s.farmers = store }
}

// WithCache enables result caching for stored farmers.
func WithCache(cache ResultCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithNotifier enables digest emails during batch processing.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMatcher replaces the built-in rule registry.
func WithMatcher(m *matcher.Matcher) Option {
	return func(s *Service) { s.matcher = m }
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service over the scheme source.
func New(schemes SchemeSource, opts ...Option) *Service {
	s := &Service{
		schemes: schemes,
		matcher: matcher.NewDefault(),
		metrics: metrics.Default,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = utils.GetLogger()
	}
	return s
}

// Schemes returns the current scheme list.
func (s *Service) Schemes(ctx context.Context) ([]*models.Scheme, error) {
	schemes, err := s.schemes.ListSchemes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}

	for _, scheme := range schemes {
		if scheme != nil && !s.matcher.HasRules(scheme.ID) {
			s.logger.Debug("Scheme has no rule set, only the general bonus applies",
				zap.String("scheme_id", scheme.ID))
		}
	}

	return schemes, nil
}

// MatchProfile ranks every scheme for an unsaved profile.
func (s *Service) MatchProfile(ctx context.Context, profile *models.FarmerProfile) ([]models.MatchResult, error) {
	schemes, err := s.Schemes(ctx)
	if err != nil {
		return nil, err
	}
	return s.rank(profile, schemes), nil
}

// ExplainProfileScheme evaluates one scheme for a profile and renders the explanation.
func (s *Service) ExplainProfileScheme(ctx context.Context, profile *models.FarmerProfile, schemeID string) (models.MatchResult, string, error) {
	schemes, err := s.Schemes(ctx)
	if err != nil {
		return models.MatchResult{}, "", err
	}

	for _, scheme := range schemes {
		if scheme != nil && scheme.ID == schemeID {
			result := s.matcher.Evaluate(profile, scheme)
			s.metrics.IncrementEvaluation(scheme.ID, result.IsEligible)
			return result, matcher.Explain(result), nil
		}
	}

	return models.MatchResult{}, "", fmt.Errorf("scheme %s: %w", schemeID, models.ErrSchemeNotFound)
}

// RegisterFarmer validates and stores a profile.
func (s *Service) RegisterFarmer(ctx context.Context, profile *models.FarmerProfile) (int64, error) {
	if s.farmers == nil {
		return 0, ErrNoFarmerStore
	}
	if err := models.ValidateFarmerProfile(profile); err != nil {
		return 0, err
	}

	id, err := s.farmers.Create(ctx, profile)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Registered farmer", zap.Int64("farmer_id", id), zap.String("state", profile.State))
	return id, nil
}

// ListFarmers returns every stored farmer.
func (s *Service) ListFarmers(ctx context.Context) ([]*models.FarmerProfile, error) {
	if s.farmers == nil {
		return nil, ErrNoFarmerStore
	}
	return s.farmers.GetAll(ctx)
}

// BatchFarmers returns the farmers stored by one ingest batch.
func (s *Service) BatchFarmers(ctx context.Context, batchID string) ([]*models.FarmerProfile, error) {
	if s.farmers == nil {
		return nil, ErrNoFarmerStore
	}
	return s.farmers.GetByBatchID(ctx, batchID)
}

// RemoveFarmer deletes a stored farmer and drops its cached results.
// A cache failure is logged; the stale entries expire with the TTL.
func (s *Service) RemoveFarmer(ctx context.Context, farmerID int64) error {
	if s.farmers == nil {
		return ErrNoFarmerStore
	}
	if err := s.farmers.Delete(ctx, farmerID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, farmerID); err != nil {
			s.logger.Warn("Failed to invalidate match cache", zap.Int64("farmer_id", farmerID), zap.Error(err))
		}
	}

	s.logger.Info("Removed farmer", zap.Int64("farmer_id", farmerID))
	return nil
}

// MatchFarmer ranks every scheme for a stored farmer, using the cache when
// one is configured. A cache failure is logged and treated as a miss.
func (s *Service) MatchFarmer(ctx context.Context, farmerID int64) (*models.FarmerProfile, []models.MatchResult, error) {
	if s.farmers == nil {
		return nil, nil, ErrNoFarmerStore
	}

	profile, err := s.farmers.GetByID(ctx, farmerID)
	if err != nil {
		return nil, nil, err
	}

	schemes, err := s.Schemes(ctx)
	if err != nil {
		return nil, nil, err
	}

	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, profile, schemes)
		if err != nil {
			s.logger.Warn("Match cache lookup failed", zap.Int64("farmer_id", farmerID), zap.Error(err))
		}
		if hit {
			s.logger.Debug("Match cache hit", zap.Int64("farmer_id", farmerID))
			return profile, relink(cached, schemes), nil
		}
	}

	results := s.rank(profile, schemes)

	if s.cache != nil {
		if err := s.cache.Set(ctx, profile, schemes, results); err != nil {
			s.logger.Warn("Failed to cache match results", zap.Int64("farmer_id", farmerID), zap.Error(err))
		}
	}

	return profile, results, nil
}

// ExplainFarmerScheme explains one scheme's result for a stored farmer.
func (s *Service) ExplainFarmerScheme(ctx context.Context, farmerID int64, schemeID string) (string, error) {
	if s.farmers == nil {
		return "", ErrNoFarmerStore
	}

	profile, err := s.farmers.GetByID(ctx, farmerID)
	if err != nil {
		return "", err
	}

	_, text, err := s.ExplainProfileScheme(ctx, profile, schemeID)
	return text, err
}

// ProcessBatch stores a batch of parsed farmers, ranks each one and sends a
// digest to every farmer with an email and at least one eligible scheme.
// Without a farmer store the batch is matched but not persisted.
func (s *Service) ProcessBatch(ctx context.Context, profiles []*models.FarmerProfile, batchID string) (*models.BatchSummary, error) {
	start := time.Now()
	summary := &models.BatchSummary{
		BatchID:      batchID,
		TotalFarmers: len(profiles),
		Errors:       []string{},
	}

	schemes, err := s.Schemes(ctx)
	if err != nil {
		return nil, err
	}
	summary.TotalSchemes = len(schemes)

	for _, p := range profiles {
		p.BatchID = batchID
	}

	if s.farmers != nil && len(profiles) > 0 {
		inserted, err := s.farmers.BulkInsert(ctx, profiles)
		if err != nil {
			return nil, fmt.Errorf("failed to store batch %s: %w", batchID, err)
		}
		summary.StoredFarmers = inserted.InsertedCount
		summary.Errors = append(summary.Errors, inserted.Errors...)
		s.metrics.AddIngestRows(metrics.IngestStored, inserted.InsertedCount)
		s.metrics.AddIngestRows(metrics.IngestFailed, inserted.FailedCount)
	}

	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results := s.rank(profile, schemes)
		eligible := matcher.EligibleOnly(results)

		summary.TotalEvaluations += len(results)
		summary.EligibleMatches += len(eligible)
		if len(eligible) == 0 {
			continue
		}
		summary.FarmersWithMatches++

		if s.notifier == nil || profile.Email == "" {
			continue
		}
		if err := s.notifier.SendEligibilityDigest(ctx, profile, eligible); err != nil {
			summary.NotificationsFailed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("notify %s: %v", profile.Email, err))
			s.logger.Warn("Failed to send eligibility digest",
				zap.String("batch_id", batchID),
				zap.String("farmer", profile.Name),
				zap.Error(err))
			continue
		}
		summary.NotificationsSent++
	}

	summary.ProcessingTime = time.Since(start)

	s.logger.Info("Processed farmer batch",
		zap.String("batch_id", batchID),
		zap.Int("farmers", summary.TotalFarmers),
		zap.Int("stored", summary.StoredFarmers),
		zap.Int("eligible_matches", summary.EligibleMatches),
		zap.Int("notified", summary.NotificationsSent),
		zap.Duration("duration", summary.ProcessingTime))

	return summary, nil
}

func (s *Service) rank(profile *models.FarmerProfile, schemes []*models.Scheme) []models.MatchResult {
	start := time.Now()
	results := s.matcher.MatchAll(profile, schemes)
	s.metrics.ObserveMatchRun(time.Since(start))

	for _, r := range results {
		s.metrics.IncrementEvaluation(r.SchemeID(), r.IsEligible)
	}
	return results
}

// relink points cached results back at the live scheme values so callers
// see the same fields a fresh evaluation would return.
func relink(results []models.MatchResult, schemes []*models.Scheme) []models.MatchResult {
	byID := make(map[string]*models.Scheme, len(schemes))
	for _, scheme := range schemes {
		if scheme != nil {
			byID[scheme.ID] = scheme
		}
	}

	for i := range results {
		if live, ok := byID[results[i].SchemeID()]; ok {
			results[i].Scheme = live
		}
	}
	return results
}
