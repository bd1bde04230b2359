package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"

	"moadeal/hotdealbot/internal/deal"
	apperr "moadeal/hotdealbot/pkg/errors"
)

// GCSStore implements Store on a single Google Cloud Storage object
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSStore creates a store backed by gs://bucket/object using
// application default credentials
func NewGCSStore(ctx context.Context, bucket, object string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, apperr.NewStorage(bucket, "failed to create GCS client", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		object: object,
	}, nil
}

// Load reads and decodes the record document.
// A missing object is an empty collection, not an error.
func (s *GCSStore) Load(ctx context.Context) ([]deal.ListingRecord, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, apperr.NewStorage(s.objectPath(), "failed to open record document", err)
	}
	defer reader.Close()

	records, err := DecodeRecords(reader)
	if err != nil {
		return nil, apperr.NewStorage(s.objectPath(), "failed to decode record document", err)
	}
	return records, nil
}

// Save writes the full collection as pretty-printed JSON
func (s *GCSStore) Save(ctx context.Context, records []deal.ListingRecord) error {
	data, err := EncodeRecords(records)
	if err != nil {
		return apperr.NewStorage(s.objectPath(), "failed to encode record document", err)
	}

	writer := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(bytes.TrimSpace(data)); err != nil {
		writer.Close()
		return apperr.NewStorage(s.objectPath(), "failed to write record document", err)
	}
	if err := writer.Close(); err != nil {
		return apperr.NewStorage(s.objectPath(), "failed to commit record document", err)
	}
	return nil
}

// Close releases the GCS client
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) objectPath() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.object)
}
