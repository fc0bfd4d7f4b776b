package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCorpus(t *testing.T) {
	csv := "query,solution\n" +
		"how do I reset my password,Use the forgot password link\n" +
		"how can I cancel my order,Open order history and press cancel\n"

	records, err := ReadCorpus(strings.NewReader(csv), "", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Query != "how do I reset my password" {
		t.Errorf("query[0] = %q", records[0].Query)
	}
	if records[1].Solution != "Open order history and press cancel" {
		t.Errorf("solution[1] = %q", records[1].Solution)
	}
}

func TestReadCorpusCaseInsensitiveHeader(t *testing.T) {
	csv := "Query,Solution\nhello,world\n"

	records, err := ReadCorpus(strings.NewReader(csv), "", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestReadCorpusBOMHeader(t *testing.T) {
	csv := "\uFEFFquery,solution\nhello,world\n"

	records, err := ReadCorpus(strings.NewReader(csv), "", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestReadCorpusCustomColumns(t *testing.T) {
	csv := "id,question,answer\n1,hello,world\n"

	records, err := ReadCorpus(strings.NewReader(csv), "question", "answer")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if records[0].Query != "hello" || records[0].Solution != "world" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestReadCorpusErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"empty file", "", "empty"},
		{"missing query column", "id,solution\n1,x\n", "query"},
		{"missing solution column", "query,id\nx,1\n", "solution"},
		{"no records", "query,solution\n", "no records"},
		{"empty query cell", "query,solution\n,fix it\n", "row 1"},
		{"empty solution cell", "query,solution\nhelp,\n", "row 1"},
		{"whitespace only cell", "query,solution\nhelp,\"  \"\n", "row 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCorpus(strings.NewReader(tt.csv), "", "")
			if !errors.Is(err, ErrInvalidCorpus) {
				t.Fatalf("expected ErrInvalidCorpus, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestReadCorpusEmptyCellReportsLaterRow(t *testing.T) {
	csv := "query,solution\nfirst,ok\nsecond,\n"

	_, err := ReadCorpus(strings.NewReader(csv), "", "")
	if !errors.Is(err, ErrInvalidCorpus) {
		t.Fatalf("expected ErrInvalidCorpus, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("error %q should name row 2", err)
	}
}

func TestLoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	if err := os.WriteFile(path, []byte("query,solution\nhello,world\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := LoadCorpus(CorpusSource{Path: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
}

func TestLoadCorpusMissingFile(t *testing.T) {
	_, err := LoadCorpus(CorpusSource{Path: filepath.Join(t.TempDir(), "nope.csv")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
