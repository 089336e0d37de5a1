package embedding

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   []float32
		expect float64
	}{
		{
			name:   "identical vectors",
			a:      []float32{1, 2, 3},
			b:      []float32{1, 2, 3},
			expect: 1,
		},
		{
			name:   "orthogonal vectors",
			a:      []float32{1, 0},
			b:      []float32{0, 1},
			expect: 0,
		},
		{
			name:   "opposite vectors",
			a:      []float32{1, 0},
			b:      []float32{-1, 0},
			expect: -1,
		},
		{
			name:   "empty vectors",
			a:      nil,
			b:      nil,
			expect: 0,
		},
		{
			name:   "mismatched lengths",
			a:      []float32{1, 2},
			b:      []float32{1},
			expect: 0,
		},
		{
			name:   "zero vector",
			a:      []float32{0, 0},
			b:      []float32{1, 1},
			expect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGeminiProvider(t.Context(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
