package engine

// FailedURL is the sentinel recorded in place of a destination URL when an
// upload did not succeed.
const FailedURL = "UPLOAD_FAILED"

// Status is the terminal state of one upload attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Outcome is the result of one upload attempt. It is created exactly once
// per item by a worker and immutable afterwards.
type Outcome struct {
	// Name is the item's name without its extension, which is also the
	// identifier the asset was addressed by at the destination.
	Name string `json:"local_filename"`

	// URL is the public URL of the stored asset, or FailedURL.
	URL string `json:"cloudinary_url"`

	// Status says whether the upload succeeded.
	Status Status `json:"status"`

	// Err carries the failure description when Status is StatusFailed.
	Err string `json:"error,omitempty"`
}
