// Package store writes scan results to an S3 compatible bucket.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pedrokiefer/exposure/pkg/scan"
)

type objectPutter interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Store struct {
	client     objectPutter
	bucketName string
	newID      func() string
}

// New connects to endpoint and creates bucket when it does not exist yet.
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, newID: uuid.NewString}, nil
}

// Key is the object name of a result: scans/<domain>/<timestamp>-<id>.json.
func Key(r *scan.Result, id string) string {
	return fmt.Sprintf("scans/%s/%s-%s.json", r.Domain, r.ScannedAt.UTC().Format("20060102T150405Z"), id)
}

// Save uploads r as JSON and returns its object key.
func (s *Store) Save(ctx context.Context, r *scan.Result) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	key := Key(r, s.newID())
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return key, nil
}
