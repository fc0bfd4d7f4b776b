package internal

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbedderDeterministic(t *testing.T) {
	e, err := NewLocalEmbedder(0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if e.Dimension() != DefaultLocalDimension {
		t.Errorf("dimension = %d, want %d", e.Dimension(), DefaultLocalDimension)
	}

	ctx := context.Background()
	a, err := e.Embed(ctx, "reset my password")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, err := e.Embed(ctx, "reset my password")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestLocalEmbedderNormalized(t *testing.T) {
	e, _ := NewLocalEmbedder(64)

	vec, err := e.Embed(context.Background(), "where is my invoice for last month")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("norm^2 = %f, want 1", sum)
	}
}

func TestLocalEmbedderSimilarTextIsCloser(t *testing.T) {
	e, _ := NewLocalEmbedder(0)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "reset password")
	near, _ := e.Embed(ctx, "how do I reset my password")
	far, _ := e.Embed(ctx, "track my shipment status")

	if squaredL2(query, near) >= squaredL2(query, far) {
		t.Error("overlapping text should be closer than unrelated text")
	}
}

func TestLocalEmbedderCaseInsensitive(t *testing.T) {
	e, _ := NewLocalEmbedder(0)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "Reset Password")
	b, _ := e.Embed(ctx, "reset password")

	if squaredL2(a, b) != 0 {
		t.Error("case should not change the embedding")
	}
}

func TestLocalEmbedderNoTokens(t *testing.T) {
	e, _ := NewLocalEmbedder(0)

	if _, err := e.Embed(context.Background(), "!!! ---"); err == nil {
		t.Error("expected error for text with no tokens")
	}
}

func TestLocalEmbedderBatch(t *testing.T) {
	e, _ := NewLocalEmbedder(0)

	vecs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}

	single, _ := e.Embed(context.Background(), "two")
	if squaredL2(vecs[1], single) != 0 {
		t.Error("batch and single embedding differ")
	}
}
