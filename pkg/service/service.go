package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nutrihq/ceres/pkg/cache"
	"nutrihq/ceres/pkg/limits"
	"nutrihq/ceres/pkg/limits/quota"
	"nutrihq/ceres/pkg/lookup"
	"nutrihq/ceres/pkg/retry"
	"nutrihq/ceres/pkg/storage"
	"nutrihq/ceres/pkg/telemetry/logging"
)

// Finder queries the product database. Implemented by lookup.Client.
type Finder interface {
	Search(ctx context.Context, query string) ([]lookup.Product, error)
	ProductByBarcode(ctx context.Context, code string) (*lookup.Product, error)
}

// Analysis is the result of analyzing a food photo.
type Analysis struct {
	// Description names the recognized dish.
	Description string

	// Estimated nutrition for the pictured portion.
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// Analyzer estimates nutrition from food photos.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (Analysis, error)
}

// Denial explains why an operation was not admitted. Denials are
// expected outcomes and never reported as errors.
type Denial struct {
	// Reason is a human-readable explanation.
	Reason string

	// RetryAfter is how long to wait before retrying. Zero for quota
	// denials, which only clear on the next scheduled reset.
	RetryAfter time.Duration
}

// CacheSettings contains the cache sizing for the service.
type CacheSettings struct {
	// MaxSize applies to each of the three response caches.
	MaxSize int

	// TTLs per response kind.
	SearchTTL   time.Duration
	BarcodeTTL  time.Duration
	AnalysisTTL time.Duration
}

// Config assembles a Service.
type Config struct {
	// Limits is the rate limit and quota coordinator. A default
	// manager is created when nil.
	Limits *limits.Manager

	// Finder serves search and barcode operations. Required.
	Finder Finder

	// Analyzer serves image analysis. Optional; AnalyzeImage fails
	// when absent.
	Analyzer Analyzer

	// Log is the food log store. Optional; LogFood and DailySummary
	// fail when absent.
	Log *storage.Store

	// Retry wraps outbound calls. A default executor is created
	// when nil.
	Retry *retry.Executor

	// Cache contains cache sizing. Zero fields take stock values.
	Cache CacheSettings

	// CacheMetrics receives hit/miss counts from the response caches.
	CacheMetrics *cache.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service runs user operations through the admission and caching
// pipeline.
type Service struct {
	limits   *limits.Manager
	finder   Finder
	analyzer Analyzer
	log      *storage.Store
	retry    *retry.Executor
	logger   *slog.Logger

	searchStore   *cache.Store[[]lookup.Product]
	barcodeStore  *cache.Store[lookup.Product]
	analysisStore *cache.Store[Analysis]

	searchCache   *cache.Memoizer[[]lookup.Product]
	barcodeCache  *cache.Memoizer[lookup.Product]
	analysisCache *cache.Memoizer[Analysis]
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Finder == nil {
		return nil, fmt.Errorf("finder is required")
	}
	if cfg.Limits == nil {
		cfg.Limits = limits.NewManager(limits.Config{})
	}
	if cfg.Retry == nil {
		cfg.Retry = retry.New(3, time.Second)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = 30 * time.Minute
	}
	if cfg.Cache.BarcodeTTL == 0 {
		cfg.Cache.BarcodeTTL = time.Hour
	}
	if cfg.Cache.AnalysisTTL == 0 {
		cfg.Cache.AnalysisTTL = 24 * time.Hour
	}

	searchStore := cache.NewStore[[]lookup.Product](cache.StoreConfig{
		Name:       "search",
		MaxSize:    cfg.Cache.MaxSize,
		DefaultTTL: cfg.Cache.SearchTTL,
		Metrics:    cfg.CacheMetrics,
		Logger:     cfg.Logger,
	})
	barcodeStore := cache.NewStore[lookup.Product](cache.StoreConfig{
		Name:       "barcode",
		MaxSize:    cfg.Cache.MaxSize,
		DefaultTTL: cfg.Cache.BarcodeTTL,
		Metrics:    cfg.CacheMetrics,
		Logger:     cfg.Logger,
	})
	analysisStore := cache.NewStore[Analysis](cache.StoreConfig{
		Name:       "analysis",
		MaxSize:    cfg.Cache.MaxSize,
		DefaultTTL: cfg.Cache.AnalysisTTL,
		Metrics:    cfg.CacheMetrics,
		Logger:     cfg.Logger,
	})

	return &Service{
		limits:        cfg.Limits,
		finder:        cfg.Finder,
		analyzer:      cfg.Analyzer,
		log:           cfg.Log,
		retry:         cfg.Retry,
		logger:        cfg.Logger.With("component", "service"),
		searchStore:   searchStore,
		barcodeStore:  barcodeStore,
		analysisStore: analysisStore,
		searchCache:   cache.NewMemoizer(searchStore, cfg.Cache.SearchTTL),
		barcodeCache:  cache.NewMemoizer(barcodeStore, cfg.Cache.BarcodeTTL),
		analysisCache: cache.NewMemoizer(analysisStore, cfg.Cache.AnalysisTTL),
	}, nil
}

// SearchProducts looks up products matching query on behalf of user.
func (s *Service) SearchProducts(ctx context.Context, user int64, query string) ([]lookup.Product, *Denial, error) {
	ctx, logger := s.begin(ctx, user, "search")

	if denial := s.admit(user, "search", quota.OpSearches, logger); denial != nil {
		return nil, denial, nil
	}

	key := cache.Key("product_search", query)
	products, err := s.searchCache.Do(ctx, key, func(ctx context.Context) ([]lookup.Product, error) {
		return retry.Do(ctx, s.retry, "product_search", func(ctx context.Context) ([]lookup.Product, error) {
			return s.finder.Search(ctx, query)
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.limits.RecordUsage(user, quota.OpSearches)
	logger.Debug("search completed", "query", query, "results", len(products))
	return products, nil, nil
}

// ScanBarcode resolves a barcode to a product on behalf of user.
// lookup.ErrNotFound propagates when the database has no such product.
func (s *Service) ScanBarcode(ctx context.Context, user int64, code string) (*lookup.Product, *Denial, error) {
	ctx, logger := s.begin(ctx, user, "barcode")

	if denial := s.admit(user, "barcode", quota.OpBarcodeScans, logger); denial != nil {
		return nil, denial, nil
	}

	key := cache.Key("product_barcode", code)
	product, err := s.barcodeCache.Do(ctx, key, func(ctx context.Context) (lookup.Product, error) {
		return retry.Do(ctx, s.retry, "product_barcode", func(ctx context.Context) (lookup.Product, error) {
			p, err := s.finder.ProductByBarcode(ctx, code)
			if err != nil {
				return lookup.Product{}, err
			}
			return *p, nil
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.limits.RecordUsage(user, quota.OpBarcodeScans)
	logger.Debug("barcode resolved", "code", code, "product", product.Name)
	return &product, nil, nil
}

// AnalyzeImage estimates nutrition from a food photo on behalf of user.
func (s *Service) AnalyzeImage(ctx context.Context, user int64, image []byte) (*Analysis, *Denial, error) {
	if s.analyzer == nil {
		return nil, nil, fmt.Errorf("no analyzer configured")
	}

	ctx, logger := s.begin(ctx, user, "image_analysis")

	if denial := s.admit(user, "image_analysis", quota.OpImageAnalysis, logger); denial != nil {
		return nil, denial, nil
	}

	key := cache.ContentKey("photo_analysis_", image)
	analysis, err := s.analysisCache.Do(ctx, key, func(ctx context.Context) (Analysis, error) {
		return retry.Do(ctx, s.retry, "photo_analysis", func(ctx context.Context) (Analysis, error) {
			return s.analyzer.Analyze(ctx, image)
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.limits.RecordUsage(user, quota.OpImageAnalysis)
	logger.Debug("image analyzed", "description", analysis.Description)
	return &analysis, nil, nil
}

// LogFood appends an entry to the user's food log and returns its ID.
func (s *Service) LogFood(ctx context.Context, user int64, entry *storage.Entry) (string, *Denial, error) {
	if s.log == nil {
		return "", nil, fmt.Errorf("no food log configured")
	}

	ctx, logger := s.begin(ctx, user, "general")

	if result := s.limits.CheckRequest(user, "general"); !result.Allowed {
		logger.Info("request denied", "reason", result.Reason, "retry_after", result.RetryAfter)
		return "", denialFrom(result), nil
	}

	entry.UserID = user
	id, err := s.log.AddEntry(ctx, entry)
	if err != nil {
		return "", nil, err
	}

	logger.Debug("food logged", "entry_id", id, "name", entry.Name)
	return id, nil, nil
}

// DailySummary aggregates the user's food log for the day containing day.
func (s *Service) DailySummary(ctx context.Context, user int64, day time.Time) (*storage.DaySummary, *Denial, error) {
	if s.log == nil {
		return nil, nil, fmt.Errorf("no food log configured")
	}

	ctx, logger := s.begin(ctx, user, "general")

	if result := s.limits.CheckRequest(user, "general"); !result.Allowed {
		logger.Info("request denied", "reason", result.Reason, "retry_after", result.RetryAfter)
		return nil, denialFrom(result), nil
	}

	return summaryOrError(s.log.Summary(ctx, user, day))
}

// Usage reports the user's recorded quota consumption.
func (s *Service) Usage(user int64) quota.Usage {
	return s.limits.Usage(user)
}

// CleanupExpired sweeps expired entries from all response caches and
// returns the number removed.
func (s *Service) CleanupExpired() int {
	return s.searchStore.CleanupExpired() +
		s.barcodeStore.CleanupExpired() +
		s.analysisStore.CleanupExpired()
}

// CacheStats reports the contents of the response caches by name.
func (s *Service) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"search":   s.searchStore.Stats(),
		"barcode":  s.barcodeStore.Stats(),
		"analysis": s.analysisStore.Stats(),
	}
}

// begin mints a request ID and binds the request fields to the context
// and a request-scoped logger.
func (s *Service) begin(ctx context.Context, user int64, category string) (context.Context, *slog.Logger) {
	ctx = logging.WithRequestID(ctx, uuid.NewString())
	ctx = logging.WithUser(ctx, user)
	ctx = logging.WithCategory(ctx, category)
	return ctx, s.logger.With(logging.ContextFields(ctx)...)
}

// admit runs the rate limit and quota checks for one operation.
func (s *Service) admit(user int64, category, operation string, logger *slog.Logger) *Denial {
	if result := s.limits.CheckRequest(user, category); !result.Allowed {
		logger.Info("request denied", "reason", result.Reason, "retry_after", result.RetryAfter)
		return denialFrom(result)
	}
	if result := s.limits.CheckQuota(user, operation); !result.Allowed {
		logger.Info("quota exhausted", "operation", operation, "reason", result.Reason)
		return denialFrom(result)
	}
	return nil
}

func denialFrom(result *limits.CheckResult) *Denial {
	return &Denial{
		Reason:     result.Reason,
		RetryAfter: result.RetryAfter,
	}
}

func summaryOrError(summary *storage.DaySummary, err error) (*storage.DaySummary, *Denial, error) {
	if err != nil {
		return nil, nil, err
	}
	return summary, nil, nil
}
