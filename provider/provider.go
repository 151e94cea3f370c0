package provider

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a source path does not exist or is not a
// listable folder.
var ErrNotFound = errors.New("source path not found")

// Origin identifies where a transferable item lives.
type Origin int

const (
	// OriginLocal is a file on the local filesystem.
	OriginLocal Origin = iota
	// OriginRemote is an entry in a remote file-sharing folder.
	OriginRemote
)

// Item describes one transferable image. Items are immutable once created
// and each is consumed by exactly one upload worker.
type Item struct {
	// Name is the original file name, extension included. The destination
	// identifier is derived from it by stripping the extension.
	Name string

	// Origin says whether Path is a filesystem path or a remote entry path.
	Origin Origin

	// Path locates the item at its origin.
	Path string
}

// Stem returns the item's name without its extension. It is the identifier
// the item is addressed by at the destination.
func (it Item) Stem() string {
	return strings.TrimSuffix(it.Name, filepath.Ext(it.Name))
}

// Source enumerates transferable items at some origin and resolves each item
// to something the Uploader can consume directly (a local path or a
// short-lived URL).
type Source interface {
	// Enumerate lists supported image items at the given path. The order of
	// the result is not guaranteed.
	Enumerate(ctx context.Context, path string) ([]Item, error)

	// UploadSource resolves an item to an upload source: a readable local
	// path for local items, a temporary download link for remote ones.
	UploadSource(ctx context.Context, item Item) (string, error)
}

// Uploader pushes one file or URL to the remote object store and returns the
// resulting public URL.
type Uploader interface {
	Upload(ctx context.Context, source, folder, publicID string) (string, error)
}

// supportedExtensions is the set of image extensions eligible for transfer.
var supportedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".svg":  {},
}

// SupportedImage reports whether the file name carries a supported image
// extension. The check is case-insensitive.
func SupportedImage(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
