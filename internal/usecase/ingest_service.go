package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comparaqp/backend/internal/domain"
)

// Default resolution thresholds. Category labels tolerate rewording, so the
// category threshold is looser; brand identity must not blur distinct
// manufacturers, so the brand threshold is tighter.
const (
	defaultBrandThreshold    = 0.85
	defaultCategoryThreshold = 0.70

	defaultBrandName    = "Genérico"
	defaultCategoryName = "General"
)

// IngestConfig holds the tunable parameters of one ingestion pipeline.
type IngestConfig struct {
	BrandThreshold        float64
	CategoryThreshold     float64
	ProductThreshold      float64
	MinCommonTokens       int
	TokenOverlapThreshold float64
	DefaultBrand          string
	DefaultCategory       string
}

// IngestResult reports the outcome of one batch.
type IngestResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errored int `json:"errored"`

	// ObservedProductIDs are the catalog products the batch priced at the
	// store, in processing order. Feed them to Reconcile to flag rows the
	// source stopped carrying.
	ObservedProductIDs []int64 `json:"-"`
}

// Stored returns the count of records successfully stored or updated.
func (r IngestResult) Stored() int {
	return r.Created + r.Updated
}

// IngestService runs one batch reconciliation pass per source: for each raw
// record it resolves category and brand, resolves or creates the product,
// and upserts the store price. Records are processed sequentially; the
// brand/category indexes are owned by the batch for its duration.
type IngestService struct {
	repo    domain.CatalogRepository
	matcher *ProductMatcher
	config  IngestConfig
	logger  *zap.Logger
}

// NewIngestService creates an ingestion service, applying defaults for any
// zero-valued configuration field.
func NewIngestService(repo domain.CatalogRepository, config IngestConfig, logger *zap.Logger) *IngestService {
	if config.BrandThreshold <= 0 {
		config.BrandThreshold = defaultBrandThreshold
	}
	if config.CategoryThreshold <= 0 {
		config.CategoryThreshold = defaultCategoryThreshold
	}
	if config.DefaultBrand == "" {
		config.DefaultBrand = defaultBrandName
	}
	if config.DefaultCategory == "" {
		config.DefaultCategory = defaultCategoryName
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	matcher := NewProductMatcher(MatcherConfig{
		Threshold:             config.ProductThreshold,
		MinCommonTokens:       config.MinCommonTokens,
		TokenOverlapThreshold: config.TokenOverlapThreshold,
	})

	return &IngestService{
		repo:    repo,
		matcher: matcher,
		config:  config,
		logger:  logger,
	}
}

// Ingest consumes one batch of raw records for a store. Invalid records
// (blank name, non-positive price) are skipped and counted, not treated as
// errors. Each record commits its own unit of work: a failed record is
// rolled back, counted and the batch continues, so one bad record never
// aborts a batch. Failed records are not retried.
func (s *IngestService) Ingest(ctx context.Context, storeID int64, records []domain.RawRecord) (IngestResult, error) {
	log := s.logger.With(
		zap.String("batch_id", uuid.NewString()),
		zap.Int64("store_id", storeID),
	)
	log.Info("starting ingestion batch", zap.Int("records", len(records)))

	batch, err := s.newBatch(ctx)
	if err != nil {
		return IngestResult{}, err
	}

	var result IngestResult
	for _, record := range records {
		outcome, err := s.processRecord(ctx, batch, storeID, &record, &result)
		if err != nil {
			result.Errored++
			log.Warn("record failed",
				zap.String("name", record.Name),
				zap.Error(err))
			continue
		}
		if outcome != 0 {
			result.ObservedProductIDs = append(result.ObservedProductIDs, outcome)
		}
	}

	log.Info("ingestion batch complete",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errored", result.Errored))

	return result, nil
}

// Reconcile marks every price row of the store whose product was not
// observed in the latest batch as unavailable. It is an explicit separate
// step rather than an implicit part of every batch, so partial scrapes
// (single category runs) do not wipe availability for the rest of the store.
func (s *IngestService) Reconcile(ctx context.Context, storeID int64, observed []int64) (int64, error) {
	flagged, err := s.repo.MarkUnavailableExcept(ctx, storeID, observed)
	if err != nil {
		return 0, err
	}
	s.logger.Info("availability reconciled",
		zap.Int64("store_id", storeID),
		zap.Int("observed", len(observed)),
		zap.Int64("flagged_unavailable", flagged))
	return flagged, nil
}

// ingestBatch carries the state owned by a single batch: the brand and
// category indexes loaded once up front, the resolvers bound to them, and a
// lazily loaded per-brand product cache. Nothing here is shared across
// batches, so concurrent batches against different stores cannot corrupt
// each other's view.
type ingestBatch struct {
	brands           *EntityIndex
	categories       *EntityIndex
	brandResolver    *EntityResolver
	categoryResolver *EntityResolver
	productsByBrand  map[int64][]*domain.Product
}

func (s *IngestService) newBatch(ctx context.Context) (*ingestBatch, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	brandRefs := make([]domain.EntityRef, len(brands))
	for i, b := range brands {
		brandRefs[i] = domain.EntityRef{ID: b.ID, Name: b.Name}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categoryRefs := make([]domain.EntityRef, len(categories))
	for i, c := range categories {
		categoryRefs[i] = domain.EntityRef{ID: c.ID, Name: c.Name}
	}

	batch := &ingestBatch{
		brands:          NewEntityIndex(brandRefs),
		categories:      NewEntityIndex(categoryRefs),
		productsByBrand: make(map[int64][]*domain.Product),
	}

	batch.brandResolver = NewEntityResolver(s.config.BrandThreshold, s.config.DefaultBrand,
		func(ctx context.Context, name string) (domain.EntityRef, error) {
			brand, err := s.repo.CreateBrand(ctx, name)
			if err != nil {
				return domain.EntityRef{}, err
			}
			return domain.EntityRef{ID: brand.ID, Name: brand.Name}, nil
		})

	batch.categoryResolver = NewEntityResolver(s.config.CategoryThreshold, s.config.DefaultCategory,
		func(ctx context.Context, name string) (domain.EntityRef, error) {
			category, err := s.repo.CreateCategory(ctx, name)
			if err != nil {
				return domain.EntityRef{}, err
			}
			return domain.EntityRef{ID: category.ID, Name: category.Name}, nil
		})

	return batch, nil
}

// processRecord handles a single raw record and returns the id of the
// product it priced, or 0 when the record was skipped.
func (s *IngestService) processRecord(ctx context.Context, batch *ingestBatch, storeID int64, record *domain.RawRecord, result *IngestResult) (int64, error) {
	name := strings.TrimSpace(record.Name)
	if name == "" || record.Price.Sign() <= 0 {
		result.Skipped++
		return 0, nil
	}

	category, err := batch.categoryResolver.Resolve(ctx, record.Category, batch.categories)
	if err != nil {
		return 0, err
	}

	brand, err := batch.brandResolver.Resolve(ctx, record.Brand, batch.brands)
	if err != nil {
		return 0, err
	}

	// Some sources prefix the product name with the brand ("FARAON Arroz
	// Faraon Extra ..."); strip it so names align across sources.
	name = stripBrandPrefix(name, record.Brand)

	candidates, err := batch.products(ctx, s.repo, brand.ID)
	if err != nil {
		return 0, err
	}

	match := s.matcher.Match(name, candidates)

	var created *domain.Product
	err = s.repo.WithTx(ctx, func(tx domain.CatalogRepository) error {
		if match != nil {
			// Images are filled opportunistically, never overwritten.
			if record.ImageURL != "" && match.ImageURL == "" {
				if err := tx.SetProductImage(ctx, match.ID, record.ImageURL); err != nil {
					return err
				}
			}
			return tx.UpsertStorePrice(ctx, &domain.StorePrice{
				ProductID:   match.ID,
				StoreID:     storeID,
				Price:       record.Price,
				URL:         record.URL,
				IsAvailable: true,
			})
		}

		created = &domain.Product{
			Name:       name,
			BrandID:    brand.ID,
			CategoryID: category.ID,
			ImageURL:   record.ImageURL,
		}
		if err := tx.CreateProduct(ctx, created); err != nil {
			return err
		}
		return tx.UpsertStorePrice(ctx, &domain.StorePrice{
			ProductID:   created.ID,
			StoreID:     storeID,
			Price:       record.Price,
			URL:         record.URL,
			IsAvailable: true,
		})
	})
	if err != nil {
		return 0, err
	}

	if match != nil {
		if record.ImageURL != "" && match.ImageURL == "" {
			match.ImageURL = record.ImageURL
		}
		result.Updated++
		return match.ID, nil
	}

	// Visible to the rest of the batch only after the commit succeeded.
	batch.productsByBrand[brand.ID] = append(batch.productsByBrand[brand.ID], created)
	result.Created++
	return created.ID, nil
}

// products returns the cached same-brand candidates, loading them from the
// repository on first use.
func (b *ingestBatch) products(ctx context.Context, repo domain.CatalogRepository, brandID int64) ([]*domain.Product, error) {
	if cached, ok := b.productsByBrand[brandID]; ok {
		return cached, nil
	}
	rows, err := repo.ProductsByBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	products := make([]*domain.Product, len(rows))
	for i := range rows {
		products[i] = &rows[i]
	}
	b.productsByBrand[brandID] = products
	return products, nil
}

// stripBrandPrefix removes a leading brand name from a product name, keeping
// the original when the remainder would be empty.
func stripBrandPrefix(name, brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" || len(name) <= len(brand) {
		return name
	}
	if !strings.EqualFold(name[:len(brand)], brand) {
		return name
	}
	stripped := strings.TrimSpace(name[len(brand):])
	if stripped == "" {
		return name
	}
	return stripped
}
