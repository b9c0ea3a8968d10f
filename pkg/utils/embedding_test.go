package utils

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbeddingDeterministic(t *testing.T) {
	c := NewHashEmbeddingClient()

	a, err := c.GetEmbedding(context.Background(), "beaches and street food in Da Nang")
	if err != nil {
		t.Fatalf("GetEmbedding() error = %v", err)
	}
	b, _ := c.GetEmbedding(context.Background(), "beaches and street food in Da Nang")

	av, bv := a.Slice(), b.Slice()
	if len(av) != embeddingDimensions {
		t.Fatalf("dimensions = %d, want %d", len(av), embeddingDimensions)
	}
	for i := range av {
		if av[i] != bv[i] {
			t.Fatal("same text must produce the same vector")
		}
	}

	var magnitude float64
	for _, v := range av {
		magnitude += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(magnitude)-1.0) > 1e-3 {
		t.Errorf("vector not normalized, |v| = %f", math.Sqrt(magnitude))
	}
}

func TestNewEmbeddingClientProviders(t *testing.T) {
	if _, err := NewEmbeddingClient("hash", ""); err != nil {
		t.Errorf("hash provider should need no key: %v", err)
	}
	if _, err := NewEmbeddingClient("openai", ""); err == nil {
		t.Error("openai provider without key should fail")
	}
	if _, err := NewEmbeddingClient("quantum", "k"); err == nil {
		t.Error("unknown provider should fail")
	}
}
