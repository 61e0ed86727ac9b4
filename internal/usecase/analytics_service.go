package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/comparaqp/backend/internal/domain"
)

// recentEventsWindow bounds how many stored events the popular-searches
// aggregation scans.
const recentEventsWindow = 100

// AnalyticsService records search and cart usage as JSON events. Recording
// is best-effort: failures are logged and never propagate into the request
// that triggered them.
type AnalyticsService struct {
	repo   domain.AnalyticsRepository
	logger *zap.Logger
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(repo domain.AnalyticsRepository, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, logger: logger}
}

type searchEvent struct {
	Query        string         `json:"query,omitempty"`
	Action       string         `json:"action,omitempty"`
	ResultsCount int            `json:"results_count,omitempty"`
	ItemsCount   int            `json:"items_count,omitempty"`
	StoresCount  int            `json:"stores_compared,omitempty"`
	Filters      map[string]any `json:"filters,omitempty"`
	Timestamp    string         `json:"timestamp"`
}

// SearchCount is one entry of the popular-searches aggregation.
type SearchCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// LogSearch records a product search and how many results it returned.
func (s *AnalyticsService) LogSearch(ctx context.Context, query string, resultsCount int, filters map[string]any) {
	s.save(ctx, searchEvent{
		Query:        query,
		ResultsCount: resultsCount,
		Filters:      filters,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// LogCartCalculation records a cart totals computation.
func (s *AnalyticsService) LogCartCalculation(ctx context.Context, itemsCount, storesCompared int) {
	s.save(ctx, searchEvent{
		Action:      "cart_calculation",
		ItemsCount:  itemsCount,
		StoresCount: storesCompared,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// PopularSearches aggregates the most frequent recent search queries.
func (s *AnalyticsService) PopularSearches(ctx context.Context, limit int) ([]SearchCount, error) {
	if limit <= 0 {
		limit = 10
	}

	payloads, err := s.repo.RecentSearchEvents(ctx, recentEventsWindow)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, payload := range payloads {
		var event searchEvent
		if err := json.Unmarshal(payload, &event); err != nil || event.Query == "" {
			continue
		}
		if _, ok := counts[event.Query]; !ok {
			order = append(order, event.Query)
		}
		counts[event.Query]++
	}

	popular := make([]SearchCount, 0, len(counts))
	for _, query := range order {
		popular = append(popular, SearchCount{Query: query, Count: counts[query]})
	}
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Count > popular[j].Count
	})

	if len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

func (s *AnalyticsService) save(ctx context.Context, event searchEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("marshaling analytics event failed", zap.Error(err))
		return
	}
	if err := s.repo.SaveSearchEvent(ctx, payload); err != nil {
		s.logger.Warn("saving analytics event failed", zap.Error(err))
	}
}
