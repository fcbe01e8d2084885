package textsim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "hello world", b: "hello world", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "hello", b: "", want: 0.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioPartialOverlap(t *testing.T) {
	got := Ratio("abcd", "abxd")
	// LCS "abd" (3) over total length 8.
	require.InDelta(t, 0.75, got, 1e-9)
}

func TestRatioBounded(t *testing.T) {
	long := strings.Repeat("the quick brown fox jumps over the lazy dog ", 100)
	got := Ratio(long, long+"tail")
	require.GreaterOrEqual(t, got, 0.0)
	require.LessOrEqual(t, got, 1.0)
}

func TestRatioLongIdentical(t *testing.T) {
	long := strings.Repeat("x", 10000)
	require.Equal(t, 1.0, Ratio(long, long))
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical words", a: "the cat sat", b: "the cat sat", want: 1.0},
		{name: "order independent", a: "cat the sat", b: "the cat sat", want: 1.0},
		{name: "case insensitive", a: "The Cat", b: "the cat", want: 1.0},
		{name: "half overlap", a: "a b", b: "a c", want: 1.0 / 3.0},
		{name: "disjoint", a: "a b", b: "c d", want: 0.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "a", b: "", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestLengthRatio(t *testing.T) {
	require.Equal(t, 1.0, LengthRatio("", ""))
	require.Equal(t, 0.0, LengthRatio("abc", ""))
	require.InDelta(t, 0.5, LengthRatio("ab", "abcd"), 1e-9)
	require.InDelta(t, 0.5, LengthRatio("abcd", "ab"), 1e-9)
}

func TestBlendedIdentical(t *testing.T) {
	require.InDelta(t, 1.0, Blended("same output", "same output"), 1e-9)
}

func TestBlendedBounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"alpha beta", "gamma delta"},
		{"short", strings.Repeat("long ", 50)},
	}
	for _, p := range pairs {
		got := Blended(p[0], p[1])
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 1.0)
	}
}
