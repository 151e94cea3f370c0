package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ensure interface is implemented
var _ Uploader = (*CloudinaryUploader)(nil)

// Resource is one hosted asset as reported by the object store.
type Resource struct {
	PublicID string `json:"public_id"`
	Format   string `json:"format"`
	URL      string `json:"url"`
	Bytes    int64  `json:"bytes"`
}

// CloudinaryUploader pushes images to Cloudinary. Destination writes with the
// same public ID overwrite each other (last write wins), so re-running a
// batch does not accumulate duplicates.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader creates an uploader from explicit credentials.
func NewCloudinaryUploader(cloud, key, secret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloud, key, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary client: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// Upload sends source (a local path or a fetchable URL) to the given folder
// under publicID and returns the secure URL of the stored asset.
func (u *CloudinaryUploader) Upload(ctx context.Context, source, folder, publicID string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(true),
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload of %q failed: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload of %q rejected: %s", publicID, resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// ListResources pages through the hosted image assets under prefix.
func (u *CloudinaryUploader) ListResources(ctx context.Context, prefix string) ([]Resource, error) {
	var resources []Resource
	cursor := ""

	for {
		res, err := u.cld.Admin.Assets(ctx, admin.AssetsParams{
			AssetType:  api.Image,
			Prefix:     prefix,
			MaxResults: 500,
			NextCursor: cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list resources: %w", err)
		}

		for _, a := range res.Assets {
			resources = append(resources, Resource{
				PublicID: a.PublicID,
				Format:   a.Format,
				URL:      a.SecureURL,
				Bytes:    int64(a.Bytes),
			})
		}

		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}

	return resources, nil
}

// RootFolders lists the top-level folders of the cloud. The folders API is
// not available on every plan; in that case the result is empty and the
// cause is logged, never fatal.
func (u *CloudinaryUploader) RootFolders(ctx context.Context) []string {
	res, err := u.cld.Admin.RootFolders(ctx, admin.RootFoldersParams{})
	if err != nil {
		slog.Warn("cloudinary folder listing unavailable", "error", err)
		return nil
	}

	folders := make([]string, 0, len(res.Folders))
	for _, f := range res.Folders {
		folders = append(folders, f.Path)
	}
	return folders
}
