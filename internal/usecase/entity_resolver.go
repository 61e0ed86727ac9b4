package usecase

import (
	"context"
	"strings"

	"github.com/comparaqp/backend/internal/domain"
)

// EntityIndex is the in-memory index of existing entities for one ingestion
// batch, keyed by normalized lowercase name. It is loaded once per batch to
// avoid a query per record and is owned exclusively by that batch; entities
// created during the batch are added immediately so later records can match
// them. Iteration follows insertion order so fuzzy ties resolve
// deterministically to the earliest entry.
type EntityIndex struct {
	byKey   map[string]domain.EntityRef
	ordered []domain.EntityRef
}

// NewEntityIndex builds an index from the existing entities of one type.
func NewEntityIndex(refs []domain.EntityRef) *EntityIndex {
	idx := &EntityIndex{
		byKey:   make(map[string]domain.EntityRef, len(refs)),
		ordered: make([]domain.EntityRef, 0, len(refs)),
	}
	for _, ref := range refs {
		idx.Add(ref)
	}
	return idx
}

// Add registers an entity under its normalized name key. An entity whose key
// is already present is ignored; the first sighting wins.
func (idx *EntityIndex) Add(ref domain.EntityRef) {
	key := NormalizeKey(ref.Name)
	if _, ok := idx.byKey[key]; ok {
		return
	}
	idx.byKey[key] = ref
	idx.ordered = append(idx.ordered, ref)
}

// Get looks up an entity by normalized name key.
func (idx *EntityIndex) Get(key string) (domain.EntityRef, bool) {
	ref, ok := idx.byKey[key]
	return ref, ok
}

// All returns the indexed entities in insertion order.
func (idx *EntityIndex) All() []domain.EntityRef {
	return idx.ordered
}

// Len returns the number of indexed entities.
func (idx *EntityIndex) Len() int {
	return len(idx.ordered)
}

// CreateEntityFunc persists a new entity and returns its reference. The
// implementation must reuse the existing row when a concurrent writer
// already created the same name.
type CreateEntityFunc func(ctx context.Context, name string) (domain.EntityRef, error)

// EntityResolver maps a raw textual label to an existing canonical entity or
// creates a new one. Brand and category resolution share this logic; the two
// differ only in threshold and default name, so the resolver is parameterized
// by both rather than specialized per type.
type EntityResolver struct {
	threshold   float64
	defaultName string
	create      CreateEntityFunc
}

// NewEntityResolver creates a resolver with the given similarity threshold,
// fallback name for blank input (empty means blank input is an error), and
// persistence function for unmatched names.
func NewEntityResolver(threshold float64, defaultName string, create CreateEntityFunc) *EntityResolver {
	return &EntityResolver{
		threshold:   threshold,
		defaultName: defaultName,
		create:      create,
	}
}

// Resolve returns the canonical entity for rawName. Resolution order:
// default substitution for blank input, exact match on the normalized name,
// fuzzy scan keeping the best candidate at or above the threshold, then
// create. Newly created entities are added to the index so later records in
// the same batch match them exactly.
func (r *EntityResolver) Resolve(ctx context.Context, rawName string, index *EntityIndex) (domain.EntityRef, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		if r.defaultName == "" {
			return domain.EntityRef{}, domain.ErrBlankName
		}
		name = r.defaultName
	}

	key := NormalizeKey(name)
	if ref, ok := index.Get(key); ok {
		return ref, nil
	}

	var best domain.EntityRef
	bestRatio := 0.0
	found := false
	for _, candidate := range index.All() {
		ratio := Ratio(name, candidate.Name)
		if ratio > bestRatio && ratio >= r.threshold {
			bestRatio = ratio
			best = candidate
			found = true
		}
	}
	if found {
		return best, nil
	}

	ref, err := r.create(ctx, name)
	if err != nil {
		return domain.EntityRef{}, err
	}
	index.Add(ref)
	return ref, nil
}
