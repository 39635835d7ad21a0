package storage

import (
	"context"
	"errors"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrObjectExists is returned when the object name is already taken.
var ErrObjectExists = errors.New("storage: object already exists")

type GCSUploader struct {
	client *gcs.Client
	bucket string
}

func NewGCSUploader(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSUploader, error) {
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSUploader{client: c, bucket: bucket}, nil
}

func (u *GCSUploader) Close() error { return u.client.Close() }

// Upload writes a private object and never overwrites an existing one.
func (u *GCSUploader) Upload(ctx context.Context, obj Object, r io.Reader) (string, error) {
	handle := u.client.Bucket(u.bucket).Object(obj.Name).If(gcs.Conditions{DoesNotExist: true})

	w := handle.NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.ContentDisposition = "attachment"
	w.Metadata = obj.Metadata
	// single-request upload
	w.ChunkSize = 0

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return "", ErrObjectExists
		}
		return "", err
	}
	return obj.Name, nil
}
