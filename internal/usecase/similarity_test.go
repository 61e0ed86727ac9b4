package usecase

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	t.Run("identical strings score 1.0", func(t *testing.T) {
		if got := Ratio("Arroz Extra", "Arroz Extra"); got != 1.0 {
			t.Errorf("Ratio = %v, want 1.0", got)
		}
	})

	t.Run("accent and case variants score 1.0", func(t *testing.T) {
		if got := Ratio("Azúcar", "azucar"); got != 1.0 {
			t.Errorf("Ratio = %v, want 1.0", got)
		}
	})

	t.Run("disjoint strings score 0.0", func(t *testing.T) {
		if got := Ratio("abc", "xyz"); got != 0.0 {
			t.Errorf("Ratio = %v, want 0.0", got)
		}
	})

	t.Run("both empty score 1.0", func(t *testing.T) {
		if got := Ratio("", ""); got != 1.0 {
			t.Errorf("Ratio = %v, want 1.0", got)
		}
	})

	t.Run("one empty scores 0.0", func(t *testing.T) {
		if got := Ratio("arroz", ""); got != 0.0 {
			t.Errorf("Ratio = %v, want 0.0", got)
		}
	})

	t.Run("known subsequence ratio", func(t *testing.T) {
		// LCS("abcd", "abcx") = 3, ratio = 2*3/8
		if got := Ratio("abcd", "abcx"); math.Abs(got-0.75) > 1e-9 {
			t.Errorf("Ratio = %v, want 0.75", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := "Arroz Extra Costeño", "Arroz Superior Costeño"
		if Ratio(a, b) != Ratio(b, a) {
			t.Errorf("Ratio(%q, %q) != Ratio(%q, %q)", a, b, b, a)
		}
	})

	t.Run("near-identical brand names score above brand threshold", func(t *testing.T) {
		// LCS("costenoo", "costeno") = 7, ratio = 14/15
		if got := Ratio("Costeñoo", "Costeño"); got < 0.85 {
			t.Errorf("Ratio = %v, want >= 0.85", got)
		}
	})

	t.Run("distinct brand names score below brand threshold", func(t *testing.T) {
		if got := Ratio("Costeño", "Paisana"); got >= 0.85 {
			t.Errorf("Ratio = %v, want < 0.85", got)
		}
	})
}

func TestTokenOverlap(t *testing.T) {
	t.Run("identical token sets", func(t *testing.T) {
		common, ratio := TokenOverlap("Arroz Extra Costeño", "arroz extra costeno")
		if common != 3 {
			t.Errorf("common = %d, want 3", common)
		}
		if ratio != 1.0 {
			t.Errorf("ratio = %v, want 1.0", ratio)
		}
	})

	t.Run("word order does not matter", func(t *testing.T) {
		common, ratio := TokenOverlap("Bolsa 5 Kg Arroz Extra", "Arroz Extra Bolsa 5 Kg")
		if common != 5 {
			t.Errorf("common = %d, want 5", common)
		}
		if ratio != 1.0 {
			t.Errorf("ratio = %v, want 1.0", ratio)
		}
	})

	t.Run("partial overlap uses the smaller set", func(t *testing.T) {
		// intersection {arroz, extra} over min(2, 4)
		common, ratio := TokenOverlap("Arroz Extra", "Arroz Extra Premium Graneado")
		if common != 2 {
			t.Errorf("common = %d, want 2", common)
		}
		if ratio != 1.0 {
			t.Errorf("ratio = %v, want 1.0", ratio)
		}
	})

	t.Run("no tokens in common", func(t *testing.T) {
		common, ratio := TokenOverlap("Leche Gloria", "Arroz Costeño")
		if common != 0 || ratio != 0 {
			t.Errorf("TokenOverlap = (%d, %v), want (0, 0)", common, ratio)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		common, ratio := TokenOverlap("", "Arroz")
		if common != 0 || ratio != 0 {
			t.Errorf("TokenOverlap = (%d, %v), want (0, 0)", common, ratio)
		}
	})
}
