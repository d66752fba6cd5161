package credential

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
)

var _ Store = (*GCSStore)(nil)

// GCSStore keeps the token as a single object so that it survives on hosts
// with an ephemeral filesystem.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
}

func NewGCSStore(ctx context.Context, bucket, object string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return NewGCSStoreWithClient(client, bucket, object), nil
}

func NewGCSStoreWithClient(client *storage.Client, bucket, object string) *GCSStore {
	return &GCSStore{
		client: client,
		bucket: bucket,
		object: object,
	}
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Location() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.object)
}

func (s *GCSStore) Load(ctx context.Context) (*oauth2.Token, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.Location(), err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Location(), err)
	}

	return decodeToken(data)
}

func (s *GCSStore) Save(ctx context.Context, token *oauth2.Token) error {
	data, err := encodeToken(token)
	if err != nil {
		return err
	}

	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s: %w", s.Location(), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Location(), err)
	}

	return nil
}
