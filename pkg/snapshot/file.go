package snapshot

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore stores snapshots on the local filesystem.
type FileStore struct {
	dir string

	// mu serializes writes so concurrent Puts of one name never interleave.
	mu sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, failed("create", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

// Put writes html to a temp file and renames it into place.
func (s *FileStore) Put(ctx context.Context, name, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	p := s.path(clean)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return failed("put", clean, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".snapshot-*")
	if err != nil {
		return failed("put", clean, err)
	}
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return failed("put", clean, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return failed("put", clean, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return failed("put", clean, err)
	}
	return nil
}

// Get reads a snapshot.
func (s *FileStore) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path(clean))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", failed("get", clean, err)
	}
	return string(data), nil
}

// List walks the root directory. Temp files are skipped.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || isTemp(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, failed("list", s.dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// Location returns the file path of name.
func (s *FileStore) Location(name string) string {
	clean, err := cleanName(name)
	if err != nil {
		return filepath.Join(s.dir, name)
	}
	return s.path(clean)
}

func (s *FileStore) path(clean string) string {
	return filepath.Join(s.dir, filepath.FromSlash(clean))
}

func isTemp(base string) bool {
	return strings.HasPrefix(base, ".snapshot-")
}
