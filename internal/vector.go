package internal

import (
	"context"
	"errors"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

type Embedding struct {
	Vector    []float32
	Dimension int
	Model     string
}

func NewEmbedding(vec []float32, model string) Embedding {
	return Embedding{
		Vector:    vec,
		Dimension: len(vec),
		Model:     model,
	}
}

// Hit is a raw nearest-neighbor match from the index. Ordinal is the
// position of the matched vector, which doubles as the lookup key into the
// corpus snapshot.
type Hit struct {
	Ordinal  int
	Distance float32
}

// SearchResult is a hit joined with its corpus text. Distance is the
// squared L2 distance to the query embedding; smaller means more similar.
type SearchResult struct {
	Ordinal  int     `json:"ordinal"`
	Query    string  `json:"query"`
	Solution string  `json:"solution"`
	Distance float32 `json:"distance"`
}

type VectorIndex interface {
	Add(ctx context.Context, emb Embedding) error
	Search(ctx context.Context, query Embedding, k int) ([]Hit, error)
	Len() int
	Dimension() int
}
