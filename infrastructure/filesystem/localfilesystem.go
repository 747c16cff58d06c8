package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the photo persistence surface consumed by the gate engine and the
// profile handlers.
type Store interface {
	Save(name string, data []byte) error
	Read(name string) ([]byte, error)
	PathFor(name string) string
}

// Local stores photos on the node's disk, one flat directory.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Save(name string, data []byte) error {
	if err := os.WriteFile(l.PathFor(name), data, 0o644); err != nil {
		return fmt.Errorf("save photo %s: %w", name, err)
	}
	return nil
}

func (l *Local) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(l.PathFor(name))
	if err != nil {
		return nil, fmt.Errorf("read photo %s: %w", name, err)
	}
	return data, nil
}

func (l *Local) PathFor(name string) string {
	return filepath.Join(l.dir, filepath.Base(name))
}
