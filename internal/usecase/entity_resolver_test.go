package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/comparaqp/backend/internal/domain"
)

// countingCreate returns a CreateEntityFunc that assigns sequential ids and
// records every name it was asked to persist.
func countingCreate(created *[]string) CreateEntityFunc {
	return func(ctx context.Context, name string) (domain.EntityRef, error) {
		*created = append(*created, name)
		return domain.EntityRef{ID: int64(len(*created) + 100), Name: name}, nil
	}
}

func TestEntityResolverBlankName(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to the default name", func(t *testing.T) {
		var created []string
		resolver := NewEntityResolver(0.85, "Genérico", countingCreate(&created))
		index := NewEntityIndex(nil)

		ref, err := resolver.Resolve(ctx, "   ", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.Name != "Genérico" {
			t.Errorf("Name = %q, want Genérico", ref.Name)
		}
		if len(created) != 1 {
			t.Errorf("created %d entities, want 1", len(created))
		}
	})

	t.Run("reuses the default entity on later blanks", func(t *testing.T) {
		var created []string
		resolver := NewEntityResolver(0.85, "Genérico", countingCreate(&created))
		index := NewEntityIndex(nil)

		first, err := resolver.Resolve(ctx, "", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := resolver.Resolve(ctx, "  ", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("ids differ: %d != %d", first.ID, second.ID)
		}
		if len(created) != 1 {
			t.Errorf("created %d entities, want 1", len(created))
		}
	})

	t.Run("errors without a default", func(t *testing.T) {
		resolver := NewEntityResolver(0.85, "", countingCreate(&[]string{}))
		_, err := resolver.Resolve(ctx, "", NewEntityIndex(nil))
		if !errors.Is(err, domain.ErrBlankName) {
			t.Errorf("error = %v, want ErrBlankName", err)
		}
	})
}

func TestEntityResolverExactMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("matches across case and accents", func(t *testing.T) {
		var created []string
		resolver := NewEntityResolver(0.85, "Genérico", countingCreate(&created))
		index := NewEntityIndex([]domain.EntityRef{{ID: 1, Name: "Costeño"}})

		ref, err := resolver.Resolve(ctx, "COSTENO", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 1 {
			t.Errorf("ID = %d, want 1", ref.ID)
		}
		if len(created) != 0 {
			t.Errorf("created %d entities, want 0", len(created))
		}
	})
}

func TestEntityResolverFuzzyMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("merges above the threshold", func(t *testing.T) {
		var created []string
		resolver := NewEntityResolver(0.85, "Genérico", countingCreate(&created))
		index := NewEntityIndex([]domain.EntityRef{{ID: 1, Name: "Costeño"}})

		// Ratio("costenoo", "costeno") = 14/15 >= 0.85
		ref, err := resolver.Resolve(ctx, "Costeñoo", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 1 {
			t.Errorf("ID = %d, want 1 (fuzzy merge)", ref.ID)
		}
		if len(created) != 0 {
			t.Errorf("created %d entities, want 0", len(created))
		}
	})

	t.Run("creates below the threshold", func(t *testing.T) {
		var created []string
		resolver := NewEntityResolver(0.85, "Genérico", countingCreate(&created))
		index := NewEntityIndex([]domain.EntityRef{{ID: 1, Name: "Costeño"}})

		ref, err := resolver.Resolve(ctx, "Paisana", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.Name != "Paisana" {
			t.Errorf("Name = %q, want Paisana", ref.Name)
		}
		if len(created) != 1 {
			t.Fatalf("created %d entities, want 1", len(created))
		}
		if index.Len() != 2 {
			t.Errorf("index size = %d, want 2 (new entity registered)", index.Len())
		}

		// Later records in the same batch match the new entity exactly
		again, err := resolver.Resolve(ctx, "paisana", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.ID != ref.ID {
			t.Errorf("ID = %d, want %d", again.ID, ref.ID)
		}
		if len(created) != 1 {
			t.Errorf("created %d entities, want 1", len(created))
		}
	})

	t.Run("looser category threshold merges reworded labels", func(t *testing.T) {
		var created []string
		resolver := NewEntityResolver(0.70, "General", countingCreate(&created))
		index := NewEntityIndex([]domain.EntityRef{{ID: 7, Name: "Arroces y Menestras"}})

		ref, err := resolver.Resolve(ctx, "Arroz y Menestras", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 7 {
			t.Errorf("ID = %d, want 7 (category merge)", ref.ID)
		}
	})

	t.Run("keeps the best candidate among several", func(t *testing.T) {
		var created []string
		resolver := NewEntityResolver(0.70, "General", countingCreate(&created))
		index := NewEntityIndex([]domain.EntityRef{
			{ID: 1, Name: "Abarrotes"},
			{ID: 2, Name: "Arroz"},
			{ID: 3, Name: "Arrozz"},
		})

		ref, err := resolver.Resolve(ctx, "Arrozzz", index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 3 {
			t.Errorf("ID = %d, want 3 (closest candidate)", ref.ID)
		}
	})

	t.Run("propagates create failures", func(t *testing.T) {
		wantErr := errors.New("constraint violation")
		resolver := NewEntityResolver(0.85, "Genérico",
			func(ctx context.Context, name string) (domain.EntityRef, error) {
				return domain.EntityRef{}, wantErr
			})

		_, err := resolver.Resolve(ctx, "Nueva Marca", NewEntityIndex(nil))
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})
}

func TestEntityIndexFirstSightingWins(t *testing.T) {
	index := NewEntityIndex([]domain.EntityRef{
		{ID: 1, Name: "Costeño"},
		{ID: 2, Name: "costeno"},
	})

	if index.Len() != 1 {
		t.Fatalf("index size = %d, want 1", index.Len())
	}
	ref, ok := index.Get("costeno")
	if !ok || ref.ID != 1 {
		t.Errorf("Get = (%+v, %v), want first sighting id 1", ref, ok)
	}
}
