package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	IndexFilename    = "index.gob"
	SnapshotFilename = "corpus.json"
)

// ArtifactStore persists the index/snapshot pair in one directory. The two
// files are only meaningful together; Save refuses to write a mismatched
// pair and Load refuses to return one.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) IndexPath() string {
	return filepath.Join(s.dir, IndexFilename)
}

func (s *ArtifactStore) SnapshotPath() string {
	return filepath.Join(s.dir, SnapshotFilename)
}

func (s *ArtifactStore) Exists() bool {
	_, idxErr := os.Stat(s.IndexPath())
	_, snapErr := os.Stat(s.SnapshotPath())
	return idxErr == nil && snapErr == nil
}

// Save writes both artifacts through temp files and renames. Each rename is
// atomic; if a crash lands between the two, the count and dimension recorded
// in the snapshot make the torn pair detectable at load time.
func (s *ArtifactStore) Save(index *FlatIndex, snapshot *Snapshot) error {
	if index.Len() != snapshot.Len() {
		return fmt.Errorf("%w: refusing to persist %d vectors with %d records",
			ErrIndexCorrupt, index.Len(), snapshot.Len())
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	if err := s.saveSnapshot(snapshot); err != nil {
		return err
	}
	if err := index.Save(s.IndexPath()); err != nil {
		return err
	}
	return nil
}

func (s *ArtifactStore) saveSnapshot(snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".corpus-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.SnapshotPath()); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Load reads the pair back and verifies the positional invariant. A missing
// artifact names the file so the operator knows what to rebuild.
func (s *ArtifactStore) Load() (*FlatIndex, *Snapshot, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, nil, err
	}

	index, err := LoadFlatIndex(s.IndexPath())
	if err != nil {
		return nil, nil, err
	}

	if index.Len() != snapshot.Len() {
		return nil, nil, fmt.Errorf("%w: index has %d vectors, snapshot has %d records",
			ErrIndexCorrupt, index.Len(), snapshot.Len())
	}
	if len(snapshot.Queries) != len(snapshot.Solutions) {
		return nil, nil, fmt.Errorf("%w: snapshot has %d queries and %d solutions",
			ErrIndexCorrupt, len(snapshot.Queries), len(snapshot.Solutions))
	}

	return index, snapshot, nil
}

func (s *ArtifactStore) loadSnapshot() (*Snapshot, error) {
	data, err := os.ReadFile(s.SnapshotPath())
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, s.SnapshotPath())
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.SnapshotPath(), err)
	}
	return &snapshot, nil
}
