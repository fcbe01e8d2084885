// Package textsim implements the lightweight text similarity measures used
// for cache lookups and cross-model consistency scoring.
package textsim

import "strings"

// maxSequenceRunes bounds the quadratic LCS computation. Longer inputs are
// truncated; the prefix is representative enough for similarity lookups.
const maxSequenceRunes = 512

// Ratio returns a sequence similarity in [0, 1] based on the longest common
// subsequence of the two strings, computed over runes. Identical strings
// return exactly 1.0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra := truncateRunes(a)
	rb := truncateRunes(b)

	lcs := lcsLength(ra, rb)
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

func truncateRunes(s string) []rune {
	r := []rune(s)
	if len(r) > maxSequenceRunes {
		r = r[:maxSequenceRunes]
	}
	return r
}

// lcsLength computes longest common subsequence length with two rolling rows.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Jaccard returns the word-set Jaccard similarity of the two strings. Words
// are lowercased whitespace-separated tokens. Two empty texts are identical.
func Jaccard(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1.0
	}
	if len(wa) == 0 || len(wb) == 0 {
		return 0.0
	}

	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// LengthRatio returns min(len)/max(len) over rune counts, 1.0 when both are
// empty.
func LengthRatio(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	if la == 0 || lb == 0 {
		return 0.0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

// Blended combines the three measures with fixed weights: 0.5 sequence,
// 0.3 word overlap, 0.2 length ratio.
func Blended(a, b string) float64 {
	return 0.5*Ratio(a, b) + 0.3*Jaccard(a, b) + 0.2*LengthRatio(a, b)
}
