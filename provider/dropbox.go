package provider

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
)

// ensure interface is implemented
var _ Source = (*DropboxSource)(nil)

// fileClient is the subset of the Dropbox files API the source relies on.
// Narrowing it keeps the SDK out of the tests.
type fileClient interface {
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	GetTemporaryLink(arg *files.GetTemporaryLinkArg) (*files.GetTemporaryLinkResult, error)
}

// FolderStructure maps each top-level folder name to the sorted list of all
// folder paths (nested included) discovered beneath it. It is built once per
// listing request and read-only afterwards.
type FolderStructure map[string][]string

// DropboxSource enumerates images from a Dropbox folder. Remote items are
// never copied locally: each resolves to a temporary download link (valid
// for roughly four hours) which is handed to the uploader as-is.
type DropboxSource struct {
	client fileClient
}

// NewDropboxSource creates a DropboxSource authenticated with the given
// access token.
func NewDropboxSource(token string) *DropboxSource {
	cfg := dropbox.Config{Token: token, LogLevel: dropbox.LogOff}
	return &DropboxSource{client: files.New(cfg)}
}

// normalizePath maps user input to the Dropbox API convention: the root is
// the empty string, everything else starts with a slash.
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Enumerate lists the supported image files in the given Dropbox folder,
// following continuation cursors until the listing is exhausted.
func (s *DropboxSource) Enumerate(ctx context.Context, folder string) ([]Item, error) {
	var items []Item

	res, err := s.client.ListFolder(files.NewListFolderArg(normalizePath(folder)))
	if err != nil {
		return nil, fmt.Errorf("failed to list dropbox folder %q: %w", folder, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, entry := range res.Entries {
			meta, ok := entry.(*files.FileMetadata)
			if !ok || !SupportedImage(meta.Name) {
				continue
			}
			items = append(items, Item{
				Name:   meta.Name,
				Origin: OriginRemote,
				Path:   meta.PathLower,
			})
		}

		if !res.HasMore {
			break
		}
		res, err = s.client.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			return nil, fmt.Errorf("failed to continue dropbox listing: %w", err)
		}
	}

	return items, nil
}

// UploadSource resolves a remote item to a short-lived download link so the
// object store can pull the bytes directly.
func (s *DropboxSource) UploadSource(ctx context.Context, item Item) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	link, err := s.client.GetTemporaryLink(files.NewGetTemporaryLinkArg(item.Path))
	if err != nil {
		return "", fmt.Errorf("failed to get temporary link for %q: %w", item.Path, err)
	}
	return link.Link, nil
}

// FolderTree walks the account's folder hierarchy depth-first and returns it
// grouped by top-level folder. A failure listing one subtree is logged and
// skipped; traversal continues with its siblings.
func (s *DropboxSource) FolderTree(ctx context.Context) (FolderStructure, error) {
	roots, err := s.listSubfolders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list dropbox root: %w", err)
	}

	tree := make(FolderStructure, len(roots))
	for _, root := range roots {
		name := path.Base(root)
		paths := []string{root}

		// Iterative DFS, stack-based: survives arbitrarily deep trees.
		stack := []string{root}
		for len(stack) > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			curr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			subs, err := s.listSubfolders(ctx, curr)
			if err != nil {
				slog.Warn("skipping unreadable dropbox subtree", "path", curr, "error", err)
				continue
			}
			for _, sub := range subs {
				paths = append(paths, sub)
				stack = append(stack, sub)
			}
		}

		sort.Strings(paths)
		tree[name] = paths
	}
	return tree, nil
}

// RootFolders returns the sorted display paths of the account's top-level
// folders.
func (s *DropboxSource) RootFolders(ctx context.Context) ([]string, error) {
	roots, err := s.listSubfolders(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.Strings(roots)
	return roots, nil
}

// listSubfolders returns the display paths of the immediate subfolders of p,
// following continuation cursors.
func (s *DropboxSource) listSubfolders(ctx context.Context, p string) ([]string, error) {
	var folders []string

	res, err := s.client.ListFolder(files.NewListFolderArg(normalizePath(p)))
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, entry := range res.Entries {
			if meta, ok := entry.(*files.FolderMetadata); ok {
				folders = append(folders, meta.PathDisplay)
			}
		}

		if !res.HasMore {
			break
		}
		res, err = s.client.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			return nil, err
		}
	}

	return folders, nil
}
