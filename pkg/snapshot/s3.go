package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store persists the snapshot as a single S3 object. The write path
// is still fire-and-forget from the store's point of view; S3 only
// widens where the best-effort copy lives.
//
// Example:
//
//	client := s3.New(s3.Options{Region: "us-east-1"})
//	store := snapshot.NewS3Store(client, "my-bucket", "dashboard/state.json")
type S3Store struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Store creates an S3-backed store writing to bucket/key.
func NewS3Store(client *s3.Client, bucket, key string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

// Save overwrites the snapshot object.
func (s *S3Store) Save(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

// Load fetches the snapshot object, returning (nil, nil) when the key
// does not exist.
func (s *S3Store) Load(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes the snapshot object.
func (s *S3Store) Delete(ctx context.Context) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	return err
}

// Close is a no-op for the S3 backend.
func (s *S3Store) Close() error {
	return nil
}
