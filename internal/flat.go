package internal

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var _ VectorIndex = (*FlatIndex)(nil)

// FlatIndex is an exact brute-force nearest-neighbor index under squared L2
// distance. Every query is compared against every stored vector; with a
// corpus of hundreds to a few thousand entries this is fast enough, and
// exactness matters more than shaving milliseconds.
//
// Reads are safe for concurrent use. A rebuild produces a whole new index;
// a live one is never mutated while searches run.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

func NewFlatIndex(dimension int) (*FlatIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be > 0, got %d", dimension)
	}
	return &FlatIndex{dimension: dimension}, nil
}

// Add appends a vector. The vector's ordinal is its insertion position.
func (f *FlatIndex) Add(_ context.Context, emb Embedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(emb.Vector) != f.dimension {
		return fmt.Errorf("%w: index has %d, vector has %d", ErrDimensionMismatch, f.dimension, len(emb.Vector))
	}

	vec := make([]float32, f.dimension)
	copy(vec, emb.Vector)
	f.vectors = append(f.vectors, vec)
	return nil
}

// Search returns the k nearest vectors ordered by ascending distance, ties
// broken by ascending ordinal. k is clamped to the index size; searching an
// empty index yields an empty result, not an error.
func (f *FlatIndex) Search(_ context.Context, query Embedding, k int) ([]Hit, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(query.Vector) != f.dimension {
		return nil, fmt.Errorf("%w: index has %d, query has %d", ErrDimensionMismatch, f.dimension, len(query.Vector))
	}

	if len(f.vectors) == 0 {
		return []Hit{}, nil
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	hits := make([]Hit, len(f.vectors))
	for i, vec := range f.vectors {
		hits[i] = Hit{Ordinal: i, Distance: squaredL2(query.Vector, vec)}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Ordinal < hits[b].Ordinal
	})

	return hits[:k], nil
}

func (f *FlatIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

func (f *FlatIndex) Dimension() int {
	return f.dimension
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// flatIndexState is the gob wire form of a FlatIndex.
type flatIndexState struct {
	Dimension int
	Vectors   [][]float32
}

func (f *FlatIndex) GobEncode() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(flatIndexState{
		Dimension: f.dimension,
		Vectors:   f.vectors,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *FlatIndex) GobDecode(data []byte) error {
	var state flatIndexState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dimension = state.Dimension
	f.vectors = state.Vectors
	return nil
}

// Save writes the index to path via a temp file and rename, so a crash
// mid-write never leaves a truncated artifact behind.
func (f *FlatIndex) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(f); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename index: %w", err)
	}
	return nil
}

func LoadFlatIndex(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	idx := &FlatIndex{}
	if err := gob.NewDecoder(f).Decode(idx); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", path, err)
	}
	if idx.dimension <= 0 {
		return nil, fmt.Errorf("decode index %s: dimension %d", path, idx.dimension)
	}
	return idx, nil
}
