package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	qerrors "github.com/quarkc-go/quark/internal/errors"
)

// ErrNotFound is returned when a snapshot doesn't exist.
var ErrNotFound = errors.New("snapshot: not found")

// ErrInvalidName is returned for names that are empty, absolute or climb
// out of the store.
var ErrInvalidName = errors.New("snapshot: invalid name")

// Store is the interface for snapshot storage backends. Names are
// slash-separated relative paths such as "pages/home.html".
type Store interface {
	// Put stores html under name, replacing any previous snapshot.
	Put(ctx context.Context, name, html string) error

	// Get returns the snapshot stored under name.
	Get(ctx context.Context, name string) (string, error)

	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Location describes where name is stored, for messages.
	Location(name string) string
}

// Open returns the store for target: an S3Store for an s3://bucket/prefix
// URL, a FileStore rooted at target otherwise. opts configure the S3 client.
func Open(target string, opts S3Options) (Store, error) {
	if rest, ok := strings.CutPrefix(target, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, qerrors.New("Q141").WithDetail(fmt.Sprintf("no bucket in %q", target))
		}
		return NewS3Store(NewS3Client(opts), bucket, prefix), nil
	}
	if target == "" {
		return nil, qerrors.New("Q141").WithDetail("empty output target")
	}
	return NewFileStore(target)
}

// cleanName validates name and returns it in canonical slash form.
func cleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	clean := path.Clean(name)
	if name == "" || clean == "." || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}

// failed wraps a backend error under Q150.
func failed(op, name string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidName) {
		return err
	}
	return qerrors.New("Q150").WithDetail(fmt.Sprintf("%s %s: %v", op, name, err)).Wrap(err)
}
