package usecase

import "strings"

// Ratio computes a normalized string-similarity score in [0, 1] between two
// strings. Both inputs are normalized and lowercased before scoring. The
// score is the longest-common-subsequence ratio 2*LCS/(len(a)+len(b)):
// identical strings yield 1.0, disjoint strings approach 0.0.
func Ratio(a, b string) float64 {
	ar := []rune(NormalizeKey(a))
	br := []rune(NormalizeKey(b))

	if len(ar) == 0 && len(br) == 0 {
		return 1.0
	}
	if len(ar) == 0 || len(br) == 0 {
		return 0.0
	}

	lcs := lcsLength(ar, br)
	return 2 * float64(lcs) / float64(len(ar)+len(br))
}

// lcsLength computes the longest common subsequence length of two rune
// slices using two rows instead of the full matrix for space efficiency.
func lcsLength(r1, r2 []rune) int {
	n := len(r2)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= n; j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	return prev[n]
}

// TokenOverlap splits both strings into whitespace-delimited token sets
// (normalized and lowercased) and reports the intersection size and
// |intersection| / min(|tokensA|, |tokensB|). Either side having no tokens
// yields (0, 0).
func TokenOverlap(a, b string) (int, float64) {
	ta := tokenSet(NormalizeKey(a))
	tb := tokenSet(NormalizeKey(b))

	if len(ta) == 0 || len(tb) == 0 {
		return 0, 0
	}

	common := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common++
		}
	}

	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}

	return common, float64(common) / float64(smaller)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
