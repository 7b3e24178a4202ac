package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore is a Store backed by one Google Cloud Storage bucket.
type GCSStore struct {
	bucket *storage.BucketHandle
}

// NewGCSStore opens a storage client bound to the named bucket. The client
// uses ambient application-default credentials; it is created once at cold
// start and shared across requests.
func NewGCSStore(ctx context.Context, bucketName string) (*GCSStore, error) {
	if bucketName == "" {
		return nil, errors.New("storage.bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize storage client: %w", err)
	}

	return &GCSStore{bucket: client.Bucket(bucketName)}, nil
}

// List returns object names under the query prefix. Synthetic prefix entries
// produced by delimited listings carry no name and are skipped; only real
// objects are candidates for selection.
func (s *GCSStore) List(ctx context.Context, query Query) ([]string, error) {
	q := &storage.Query{
		Prefix:    query.Prefix,
		Delimiter: query.Delimiter,
	}
	if err := q.SetAttrSelection([]string{"Name"}); err != nil {
		return nil, fmt.Errorf("restrict listing attributes: %w", err)
	}

	var names []string
	objects := s.bucket.Objects(ctx, q)
	for {
		attrs, err := objects.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate objects: %w", err)
		}
		if attrs.Name == "" {
			continue
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}

// Download fetches one object's full contents.
func (s *GCSStore) Download(ctx context.Context, name string) ([]byte, error) {
	reader, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %q: %w", name, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", name, err)
	}

	return data, nil
}
