package internal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

var (
	ErrInvalidCorpus    = errors.New("invalid corpus")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrIndexCorrupt     = errors.New("index and corpus snapshot are out of sync")
	ErrModelMismatch    = errors.New("index was built with a different embedding model")
	ErrNoIndex          = errors.New("no index built yet")
	ErrEmptyQuery       = errors.New("empty query")
)

const (
	DefaultQueryColumn    = "query"
	DefaultSolutionColumn = "solution"
)

// Record is one row of the support corpus: a known customer query and the
// solution an agent gave for it.
type Record struct {
	Query    string
	Solution string
}

// Snapshot holds the corpus rows in the exact order they were indexed.
// Ordinal position is the only join key between the snapshot and the vector
// index, so the two are only ever written and replaced as a pair.
type Snapshot struct {
	Queries   []string  `json:"queries"`
	Solutions []string  `json:"solutions"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	BuiltAt   time.Time `json:"built_at"`
}

func (s *Snapshot) Len() int {
	return len(s.Queries)
}

func (s *Snapshot) Record(i int) Record {
	return Record{Query: s.Queries[i], Solution: s.Solutions[i]}
}

// CorpusSource describes where the tabular corpus lives and which columns
// hold the query and solution text.
type CorpusSource struct {
	Path           string
	QueryColumn    string
	SolutionColumn string
}

// LoadCorpus reads the corpus CSV from disk. A missing file surfaces as-is;
// structural problems are reported as ErrInvalidCorpus.
func LoadCorpus(src CorpusSource) ([]Record, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	records, err := ReadCorpus(f, src.QueryColumn, src.SolutionColumn)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", src.Path, err)
	}
	return records, nil
}

// ReadCorpus parses CSV rows with a header line. Column names are matched
// case-insensitively so both "Query" and "query" headers work.
func ReadCorpus(r io.Reader, queryCol, solutionCol string) ([]Record, error) {
	if queryCol == "" {
		queryCol = DefaultQueryColumn
	}
	if solutionCol == "" {
		solutionCol = DefaultSolutionColumn
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidCorpus)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	queryIdx, solutionIdx := -1, -1
	for i, col := range header {
		name := strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
		switch {
		case strings.EqualFold(name, queryCol):
			queryIdx = i
		case strings.EqualFold(name, solutionCol):
			solutionIdx = i
		}
	}
	if queryIdx < 0 {
		return nil, fmt.Errorf("%w: missing %q column", ErrInvalidCorpus, queryCol)
	}
	if solutionIdx < 0 {
		return nil, fmt.Errorf("%w: missing %q column", ErrInvalidCorpus, solutionCol)
	}

	var records []Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		rec := Record{
			Query:    strings.TrimSpace(fields[queryIdx]),
			Solution: strings.TrimSpace(fields[solutionIdx]),
		}
		if rec.Query == "" {
			return nil, fmt.Errorf("%w: row %d has an empty query", ErrInvalidCorpus, row)
		}
		if rec.Solution == "" {
			return nil, fmt.Errorf("%w: row %d has an empty solution", ErrInvalidCorpus, row)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInvalidCorpus)
	}
	return records, nil
}
