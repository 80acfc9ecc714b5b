package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/store"
)

// Medium implements store.Medium over a single file path.
type Medium struct {
	path string
}

// New returns a medium for path.
func New(path string) *Medium {
	return &Medium{path: path}
}

// Read returns the file contents.
func (m *Medium) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", m.path, store.ErrMissing)
		}
		return nil, fmt.Errorf("read %s: %w", m.path, err)
	}
	return data, nil
}

// Write overwrites the file, creating parent directories as needed.
func (m *Medium) Write(_ context.Context, data []byte) error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", m.path, err)
		}
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	return nil
}

// Exists reports whether the file is present.
func (m *Medium) Exists(_ context.Context) bool {
	_, err := os.Stat(m.path)
	return err == nil
}

func (m *Medium) String() string {
	return m.path
}

// Document returns a durable document stored at path, with its backup at path+suffix.
func Document[T any](path, suffix string, count func(T) int, logger *zerolog.Logger) *store.Durable[T] {
	return store.NewDurable(New(path), New(path+suffix), count, logger)
}
