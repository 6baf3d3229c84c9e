package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pedrokiefer/exposure/pkg/risk"
	"github.com/pedrokiefer/exposure/pkg/scan"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket      string
	key         string
	body        []byte
	contentType string
	err         error
}

func (f *fakePutter) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.bucket, f.key, f.body, f.contentType = bucket, key, b, opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func testResult() *scan.Result {
	return &scan.Result{
		Domain:      "example.com",
		Score:       30,
		Grade:       "F",
		OverallRisk: risk.Critical,
		ScannedAt:   time.Date(2025, 6, 1, 12, 30, 5, 0, time.UTC),
	}
}

func TestSave(t *testing.T) {
	p := &fakePutter{}
	s := &Store{client: p, bucketName: "exposure-scans", newID: func() string { return "0b5c" }}

	key, err := s.Save(context.Background(), testResult())
	require.NoError(t, err)
	require.Equal(t, "scans/example.com/20250601T123005Z-0b5c.json", key)
	require.Equal(t, "exposure-scans", p.bucket)
	require.Equal(t, key, p.key)
	require.Equal(t, "application/json", p.contentType)

	var got scan.Result
	require.NoError(t, json.Unmarshal(p.body, &got))
	require.Equal(t, "example.com", got.Domain)
	require.Equal(t, 30, got.Score)
}

func TestSave_Error(t *testing.T) {
	p := &fakePutter{err: errors.New("access denied")}
	s := &Store{client: p, bucketName: "exposure-scans", newID: func() string { return "id" }}

	_, err := s.Save(context.Background(), testResult())
	require.ErrorContains(t, err, "access denied")
}
