package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BuildIndex embeds every corpus query and collects the vectors into a flat
// index, returning it together with the snapshot of parallel query/solution
// arrays. Index ordinal i corresponds exactly to records[i]; a single
// embedding failure aborts the whole build, because skipping a record would
// silently shift every ordinal after it.
func BuildIndex(ctx context.Context, records []Record, embedder Embedder) (*FlatIndex, *Snapshot, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: no records", ErrInvalidCorpus)
	}

	queries := make([]string, len(records))
	solutions := make([]string, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Query) == "" {
			return nil, nil, fmt.Errorf("%w: record %d has an empty query", ErrInvalidCorpus, i)
		}
		if strings.TrimSpace(rec.Solution) == "" {
			return nil, nil, fmt.Errorf("%w: record %d has an empty solution", ErrInvalidCorpus, i)
		}
		queries[i] = rec.Query
		solutions[i] = rec.Solution
	}

	vecs, err := embedder.EmbedBatch(ctx, queries)
	if err != nil {
		return nil, nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vecs) != len(records) {
		return nil, nil, fmt.Errorf("embedder returned %d vectors for %d records", len(vecs), len(records))
	}

	index, err := NewFlatIndex(embedder.Dimension())
	if err != nil {
		return nil, nil, err
	}
	for i, vec := range vecs {
		if err := index.Add(ctx, NewEmbedding(vec, embedder.Model())); err != nil {
			return nil, nil, fmt.Errorf("add vector %d: %w", i, err)
		}
	}

	snapshot := &Snapshot{
		Queries:   queries,
		Solutions: solutions,
		Model:     embedder.Model(),
		Dimension: embedder.Dimension(),
		BuiltAt:   time.Now().UTC(),
	}

	return index, snapshot, nil
}

// Retriever answers nearest-neighbor queries against a loaded index and
// snapshot. It holds no mutable state and is safe for concurrent use.
type Retriever struct {
	index    *FlatIndex
	snapshot *Snapshot
	embedder Embedder
}

// NewRetriever validates the positional invariant and the embedding-model
// identity before serving anything. A mismatched pair means the artifacts
// are torn or stale, and wrong-but-plausible results are worse than an
// error.
func NewRetriever(index *FlatIndex, snapshot *Snapshot, embedder Embedder) (*Retriever, error) {
	if index.Len() != snapshot.Len() {
		return nil, fmt.Errorf("%w: index has %d vectors, snapshot has %d records",
			ErrIndexCorrupt, index.Len(), snapshot.Len())
	}
	if snapshot.Dimension != 0 && snapshot.Dimension != index.Dimension() {
		return nil, fmt.Errorf("%w: index dimension %d, snapshot dimension %d",
			ErrIndexCorrupt, index.Dimension(), snapshot.Dimension)
	}
	if snapshot.Model != "" && snapshot.Model != embedder.Model() {
		return nil, fmt.Errorf("%w: index built with %s, embedder is %s",
			ErrModelMismatch, snapshot.Model, embedder.Model())
	}

	return &Retriever{
		index:    index,
		snapshot: snapshot,
		embedder: embedder,
	}, nil
}

// Search embeds the query and returns the k nearest corpus entries ordered
// by ascending distance, ties broken by ordinal. k is clamped to the corpus
// size; an empty corpus yields an empty result.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, NewEmbedding(vec, r.embedder.Model()), k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Ordinal:  hit.Ordinal,
			Query:    r.snapshot.Queries[hit.Ordinal],
			Solution: r.snapshot.Solutions[hit.Ordinal],
			Distance: hit.Distance,
		}
	}
	return results, nil
}

func (r *Retriever) Len() int {
	return r.index.Len()
}
