package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ensure interface is implemented
var _ Source = (*LocalSource)(nil)

// LocalSource enumerates images from a local directory snapshot. The listing
// is non-recursive: only direct children with a supported extension qualify.
type LocalSource struct{}

// NewLocalSource creates a LocalSource.
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// Enumerate lists the supported image files directly under dir.
func (s *LocalSource) Enumerate(ctx context.Context, dir string) ([]Item, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}

	var items []Item
	for _, entry := range entries {
		if entry.IsDir() || !SupportedImage(entry.Name()) {
			continue
		}
		items = append(items, Item{
			Name:   entry.Name(),
			Origin: OriginLocal,
			Path:   filepath.Join(dir, entry.Name()),
		})
	}
	return items, nil
}

// UploadSource resolves a local item to its filesystem path. The uploader
// reads the file itself, so no staging copy is made.
func (s *LocalSource) UploadSource(ctx context.Context, item Item) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if _, err := os.Stat(item.Path); err != nil {
		return "", fmt.Errorf("failed to read source %q: %w", item.Path, err)
	}
	return item.Path, nil
}
