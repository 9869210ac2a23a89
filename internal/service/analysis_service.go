package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/young626-jang/ltv-flask/internal/cache"
	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/history"
	"github.com/young626-jang/ltv-flask/internal/logging"
	"github.com/young626-jang/ltv-flask/internal/metrics"
	"github.com/young626-jang/ltv-flask/internal/registry"
	"github.com/young626-jang/ltv-flask/internal/repository"
	"github.com/young626-jang/ltv-flask/internal/textsrc"
)

// Analyzer reconstructs a register document. *registry.Engine satisfies it.
type Analyzer interface {
	Analyze(text string) registry.Result
}

// GraphRepository is the graph storage contract required by the service.
type GraphRepository interface {
	SaveAnalysis(ctx context.Context, a domain.Analysis) error
	ListProperties(ctx context.Context, opts repository.ListPropertiesOptions) (domain.PropertyListResult, error)
	FetchProperty(ctx context.Context, propertyID string) (domain.PropertyDetail, error)
	CreditorExposure(ctx context.Context, limit int) ([]domain.CreditorExposure, error)
	ExportProperties(ctx context.Context) ([]domain.PropertySummary, error)
}

// HistoryStore is the append-only analysis log.
type HistoryStore interface {
	Record(ctx context.Context, rec domain.AnalysisRecord) error
	Get(ctx context.Context, id string) (domain.AnalysisRecord, error)
	FindByHash(ctx context.Context, hash string) (domain.AnalysisRecord, error)
	ListByProperty(ctx context.Context, propertyID string, limit int) ([]domain.AnalysisRecord, error)
}

// PartyDeriver extracts graph parties from a result.
type PartyDeriver interface {
	Derive(propertyID string, res registry.Result) []domain.PartyLink
}

// Dependencies wires the collaborators of AnalysisService. Only Engine is
// required; a nil sink is skipped.
type Dependencies struct {
	Engine     Analyzer
	Repository GraphRepository
	History    HistoryStore
	Cache      cache.Cache
	Parties    PartyDeriver
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// AnalysisService runs documents through the engine and persists the results.
type AnalysisService struct {
	engine  Analyzer
	repo    GraphRepository
	history HistoryStore
	cache   cache.Cache
	parties PartyDeriver
	metrics *metrics.Metrics
	logger  *slog.Logger
	nowFn   func() time.Time
	newID   func() string
}

// NewAnalysisService constructs an AnalysisService.
func NewAnalysisService(deps Dependencies) (*AnalysisService, error) {
	if deps.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if deps.Parties == nil {
		deps.Parties = DefaultPartyDeriver{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &AnalysisService{
		engine:  deps.Engine,
		repo:    deps.Repository,
		history: deps.History,
		cache:   deps.Cache,
		parties: deps.Parties,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		nowFn:   time.Now,
		newID:   func() string { return "ANL-" + uuid.NewString() },
	}, nil
}

// WithClock overrides the time provider (used primarily in tests).
func (s *AnalysisService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Analyze reconstructs one document. An identical document seen before is
// answered from the cache. Graph and history failures fail the call; cache
// failures are only logged.
func (s *AnalysisService) Analyze(ctx context.Context, in AnalyzeInput) (domain.Analysis, error) {
	if len(in.Content) == 0 {
		return domain.Analysis{}, fmt.Errorf("%w: document is empty", ErrInvalidInput)
	}
	text, err := textsrc.Extract(in.SourceName, in.Content)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Analysis{}, fmt.Errorf("%w: document has no text", ErrInvalidInput)
	}

	hash := DocumentHash(text)
	source := sanitizeString(in.SourceName)

	if a, ok := s.fromCache(ctx, hash, source); ok {
		return a, nil
	}

	start := time.Now()
	res := s.engine.Analyze(text)
	a := domain.Analysis{
		ID:           s.newID(),
		PropertyID:   PropertyID(res.Document, hash),
		DocumentHash: hash,
		SourceName:   source,
		Result:       res,
		CreatedAt:    s.nowFn().UTC(),
	}
	a.Parties = s.parties.Derive(a.PropertyID, res)
	s.metrics.ObserveAnalysis(res.Document.PropertyCategory, start, diagnosticCodes(res.Diagnostics))

	if err := s.persist(ctx, a); err != nil {
		return domain.Analysis{}, err
	}

	s.logger.Debug("document analysed",
		slog.String("analysisId", a.ID),
		slog.String("propertyId", a.PropertyID),
		slog.Int("liens", len(res.Liens)),
		slog.Int("attachments", len(res.Attachments)),
		slog.Int("diagnostics", len(res.Diagnostics)),
	)
	return a, nil
}

// fromCache answers a repeated document. The cache is asked first; on a miss
// the history log is searched by document hash and a hit is put back into the
// cache.
func (s *AnalysisService) fromCache(ctx context.Context, hash, source string) (domain.Analysis, bool) {
	if s.cache != nil {
		entry, err := s.cache.Get(ctx, hash)
		if err == nil {
			s.metrics.CacheHit()
			return domain.Analysis{
				ID:           entry.AnalysisID,
				PropertyID:   entry.PropertyID,
				DocumentHash: hash,
				SourceName:   source,
				Result:       entry.Result,
				Parties:      s.parties.Derive(entry.PropertyID, entry.Result),
				CreatedAt:    entry.StoredAt,
				Cached:       true,
			}, true
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("cache lookup failed", slog.String("error", err.Error()))
		}
		s.metrics.CacheMiss()
	}

	if s.history == nil {
		return domain.Analysis{}, false
	}
	rec, err := s.history.FindByHash(ctx, hash)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			s.logger.Warn("history lookup failed", slog.String("error", err.Error()))
		}
		return domain.Analysis{}, false
	}
	a, err := s.fromRecord(rec)
	if err != nil {
		s.logger.Warn("stored analysis unreadable",
			slog.String("analysisId", rec.ID),
			slog.String("error", err.Error()),
		)
		return domain.Analysis{}, false
	}
	a.SourceName = source
	a.Cached = true

	if s.cache != nil {
		entry := cache.Entry{AnalysisID: a.ID, PropertyID: a.PropertyID, Result: a.Result, StoredAt: a.CreatedAt}
		if err := s.cache.Set(ctx, hash, entry); err != nil {
			s.metrics.SinkFailure("cache")
		}
	}
	s.logger.Debug("document answered from history", slog.String("analysisId", a.ID))
	return a, true
}

func (s *AnalysisService) persist(ctx context.Context, a domain.Analysis) error {
	g, gctx := errgroup.WithContext(ctx)

	if s.repo != nil {
		g.Go(func() error {
			if err := s.repo.SaveAnalysis(gctx, a); err != nil {
				s.metrics.SinkFailure("graph")
				return err
			}
			return nil
		})
	}

	if s.history != nil {
		g.Go(func() error {
			rec, err := historyRecord(a)
			if err != nil {
				return err
			}
			if err := s.history.Record(gctx, rec); err != nil {
				s.metrics.SinkFailure("history")
				return err
			}
			return nil
		})
	}

	if s.cache != nil {
		g.Go(func() error {
			entry := cache.Entry{
				AnalysisID: a.ID,
				PropertyID: a.PropertyID,
				Result:     a.Result,
				StoredAt:   a.CreatedAt,
			}
			if err := s.cache.Set(gctx, a.DocumentHash, entry); err != nil {
				s.metrics.SinkFailure("cache")
				s.logger.Warn("cache store failed",
					slog.String("analysisId", a.ID),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}

	return g.Wait()
}

func historyRecord(a domain.Analysis) (domain.AnalysisRecord, error) {
	raw, err := json.Marshal(a.Result)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("encode result: %w", err)
	}
	total := a.Result.TotalCeiling()
	if total > math.MaxInt64 {
		total = math.MaxInt64
	}
	return domain.AnalysisRecord{
		ID:           a.ID,
		PropertyID:   a.PropertyID,
		DocumentHash: a.DocumentHash,
		SourceName:   a.SourceName,
		ResultJSON:   raw,
		LienCount:    len(a.Result.Liens),
		TotalCeiling: int64(total),
		Diagnostics:  len(a.Result.Diagnostics),
		CreatedAt:    a.CreatedAt,
	}, nil
}

// GetAnalysis loads a past analysis from the history log.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id string) (domain.Analysis, error) {
	id = sanitizeString(id)
	if id == "" {
		return domain.Analysis{}, fmt.Errorf("%w: analysis id is required", ErrInvalidInput)
	}
	if s.history == nil {
		return domain.Analysis{}, ErrNotFound
	}
	rec, err := s.history.Get(ctx, id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return domain.Analysis{}, ErrNotFound
		}
		return domain.Analysis{}, err
	}

	return s.fromRecord(rec)
}

func (s *AnalysisService) fromRecord(rec domain.AnalysisRecord) (domain.Analysis, error) {
	var res registry.Result
	if err := json.Unmarshal(rec.ResultJSON, &res); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode stored result %s: %w", rec.ID, err)
	}
	return domain.Analysis{
		ID:           rec.ID,
		PropertyID:   rec.PropertyID,
		DocumentHash: rec.DocumentHash,
		SourceName:   rec.SourceName,
		Result:       res,
		Parties:      s.parties.Derive(rec.PropertyID, res),
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// PropertyHistory lists the analyses recorded for a property, newest first.
func (s *AnalysisService) PropertyHistory(ctx context.Context, propertyID string, limit int) ([]domain.AnalysisRecord, error) {
	propertyID = sanitizeString(propertyID)
	if propertyID == "" {
		return nil, fmt.Errorf("%w: property id is required", ErrInvalidInput)
	}
	if s.history == nil {
		return []domain.AnalysisRecord{}, nil
	}
	return s.history.ListByProperty(ctx, propertyID, limit)
}

// ListProperties retrieves paginated properties matching provided filters.
func (s *AnalysisService) ListProperties(ctx context.Context, params ListPropertiesParams) (PropertiesPage, error) {
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	if s.repo == nil {
		return PropertiesPage{Items: []domain.PropertySummary{}, Pagination: buildPaginationMeta(page, pageSize, 0)}, nil
	}

	minCeiling := params.MinCeiling
	if minCeiling < 0 {
		minCeiling = 0
	}

	result, err := s.repo.ListProperties(ctx, repository.ListPropertiesOptions{
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
		Search:     params.Search,
		Category:   params.Category,
		StaleOnly:  params.StaleOnly,
		MinCeiling: minCeiling,
		SortField:  params.SortField,
		SortOrder:  params.SortOrder,
	})
	if err != nil {
		return PropertiesPage{}, err
	}

	return PropertiesPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

// GetProperty fetches the consolidated graph view of a property.
func (s *AnalysisService) GetProperty(ctx context.Context, propertyID string) (domain.PropertyDetail, error) {
	propertyID = sanitizeString(propertyID)
	if propertyID == "" {
		return domain.PropertyDetail{}, fmt.Errorf("%w: property id is required", ErrInvalidInput)
	}
	if s.repo == nil {
		return domain.PropertyDetail{}, ErrNotFound
	}
	detail, err := s.repo.FetchProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return domain.PropertyDetail{}, ErrNotFound
		}
		return domain.PropertyDetail{}, err
	}
	return detail, nil
}

// CreditorExposure ranks creditors by total lien ceiling.
func (s *AnalysisService) CreditorExposure(ctx context.Context, limit int) ([]domain.CreditorExposure, error) {
	if s.repo == nil {
		return []domain.CreditorExposure{}, nil
	}
	return s.repo.CreditorExposure(ctx, limit)
}

// ExportProperties returns every stored property.
func (s *AnalysisService) ExportProperties(ctx context.Context) ([]domain.PropertySummary, error) {
	if s.repo == nil {
		return []domain.PropertySummary{}, nil
	}
	return s.repo.ExportProperties(ctx)
}

func diagnosticCodes(diags []registry.Diagnostic) []string {
	codes := make([]string, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, string(d.Code))
	}
	return codes
}

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func buildPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
		if total > 0 && totalPages == 0 {
			totalPages = 1
		}
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
