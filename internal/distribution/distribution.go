// Package distribution defines the contract between the upload handler and a
// video platform.
package distribution

import "context"

type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
)

// Privacies lists the settings offered on the upload form.
var Privacies = []Privacy{PrivacyPublic, PrivacyUnlisted, PrivacyPrivate}

// ParsePrivacy returns def for an empty value. Anything else is passed
// through unchanged and left for the platform to accept or reject.
func ParsePrivacy(value string, def Privacy) Privacy {
	if value == "" {
		return def
	}
	return Privacy(value)
}

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyUnlisted, PrivacyPrivate:
		return true
	}
	return false
}

type UploadRequest struct {
	FilePath    string
	Title       string
	Description string
	Tags        []string
	Privacy     Privacy
}

type UploadResponse struct {
	ID       string
	URL      string
	Platform string
}

type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)
	Platform() string
}
