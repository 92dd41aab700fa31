package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/ociclaim/internal/platform/s3"
)

// ObjectClient is the subset of the s3 client used by ObjectStore.
type ObjectClient interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ObjectStore mirrors the record to an object storage bucket.
type ObjectStore struct {
	client ObjectClient
	bucket string
	key    string
}

// NewObjectStore creates a store writing bucket/key through client.
func NewObjectStore(client ObjectClient, bucket, key string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, key: key}
}

// Save uploads the record.
func (s *ObjectStore) Save(ctx context.Context, rec Record) error {
	if err := s.client.PutObject(ctx, s.bucket, s.key, rec.Format()); err != nil {
		return fmt.Errorf("mirror record: %w", err)
	}
	return nil
}

// Load downloads the record, or returns nil if the object does not exist.
func (s *ObjectStore) Load(ctx context.Context) (*Record, error) {
	data, err := s.client.GetObject(ctx, s.bucket, s.key)
	if errors.Is(err, s3.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load mirrored record: %w", err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return &rec, nil
}
