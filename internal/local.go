package internal

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

var _ Embedder = (*LocalEmbedder)(nil)

const DefaultLocalDimension = 384

// LocalEmbedder is a deterministic bag-of-words embedder using feature
// hashing: each token is hashed into one of Dimension buckets with a hashed
// sign, and the resulting vector is L2-normalized. It needs no model files
// or network access, which makes it the offline default and the backend the
// tests run against. The same text always produces the same vector.
type LocalEmbedder struct {
	dimension int
}

func NewLocalEmbedder(dimension int) (*LocalEmbedder, error) {
	if dimension <= 0 {
		dimension = DefaultLocalDimension
	}
	return &LocalEmbedder{dimension: dimension}, nil
}

func (e *LocalEmbedder) Dimension() int { return e.dimension }

func (e *LocalEmbedder) Model() string {
	return fmt.Sprintf("local/hash-v1@%d", e.dimension)
}

func (e *LocalEmbedder) Close() error { return nil }

func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no tokens to embed in %q", text)
	}

	vec := make([]float32, e.dimension)
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()

		bucket := int(sum % uint32(e.dimension))
		// Top bit decides the sign so colliding tokens can cancel instead
		// of always accumulating.
		if sum&0x80000000 != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	normalize(vec)
	return vec, nil
}

func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
