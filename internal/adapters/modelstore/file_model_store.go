package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"

	"github.com/vmihailenco/msgpack/v5"
)

// formatVersion is bumped whenever the on-disk layout changes.
const formatVersion = 1

type snapshotFile struct {
	Format         int        `msgpack:"format"`
	Version        int        `msgpack:"version"`
	FeatureColumns []string   `msgpack:"feature_columns"`
	TrainAccuracy  float64    `msgpack:"train_accuracy"`
	TestAccuracy   float64    `msgpack:"test_accuracy"`
	SampleCount    int        `msgpack:"sample_count"`
	TrainedAt      time.Time  `msgpack:"trained_at"`
	Forest         *ml.Forest `msgpack:"forest"`
}

// FileModelStore keeps the single named snapshot as a msgpack file.
// Save writes a temp file in the same directory and renames it over the
// target, so readers see either the old or the new snapshot.
type FileModelStore struct {
	path string
}

func NewFileModelStore(path string) *FileModelStore {
	return &FileModelStore{path: path}
}

func (s *FileModelStore) Load(ctx context.Context) (*domain.ModelSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: model snapshot %q", domain.ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: read %q: %w", s.path, err)
	}

	var f snapshotFile
	if err := msgpack.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("load model: decode %q: %w", s.path, err)
	}
	if f.Format != formatVersion {
		return nil, fmt.Errorf("load model: %q has format %d, want %d", s.path, f.Format, formatVersion)
	}
	if f.Forest == nil || f.Forest.NumFeatures != len(f.FeatureColumns) {
		return nil, fmt.Errorf("load model: %q: forest does not match feature columns", s.path)
	}

	return &domain.ModelSnapshot{
		Version:        f.Version,
		Classifier:     f.Forest,
		FeatureColumns: f.FeatureColumns,
		TrainAccuracy:  f.TrainAccuracy,
		TestAccuracy:   f.TestAccuracy,
		SampleCount:    f.SampleCount,
		TrainedAt:      f.TrainedAt,
	}, nil
}

func (s *FileModelStore) Save(ctx context.Context, snap *domain.ModelSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	forest, ok := snap.Classifier.(*ml.Forest)
	if !ok {
		return fmt.Errorf("save model: unsupported classifier %T", snap.Classifier)
	}

	raw, err := msgpack.Marshal(snapshotFile{
		Format:         formatVersion,
		Version:        snap.Version,
		FeatureColumns: snap.FeatureColumns,
		TrainAccuracy:  snap.TrainAccuracy,
		TestAccuracy:   snap.TestAccuracy,
		SampleCount:    snap.SampleCount,
		TrainedAt:      snap.TrainedAt,
		Forest:         forest,
	})
	if err != nil {
		return fmt.Errorf("save model: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save model: create dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("save model: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save model: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save model: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save model: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("save model: replace %q: %w", s.path, err)
	}
	return nil
}
