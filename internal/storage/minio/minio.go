// Package minio adapts minio-go/v7 to the storage.Storage capability,
// grounded on the teacher's internal/storage/minio client: same custom
// transport tuning, same tracing-span-per-call convention.
package minio

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/reactome/gsa-orchestrator/internal/config"
	"github.com/reactome/gsa-orchestrator/internal/tracing"
	"github.com/reactome/gsa-orchestrator/internal/util"
)

// Client wraps a *minio.Client to satisfy storage.Storage.
type Client struct {
	mc     *minio.Client
	bucket string
}

// New dials the MinIO/S3-compatible endpoint described by cfg.
func New(cfg *config.MinioConfig) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
	}

	mc, err := minio.New(cfg.URL, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure:    cfg.USE_SSL,
		Transport: transport,
	})
	if err != nil {
		return nil, err
	}

	return &Client{mc: mc, bucket: cfg.JOBS_BUCKET}, nil
}

func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, span := tracing.GetTracer().Start(ctx, "Storage/Upload")
	defer span.End()
	util.SetSpanAttrs(span, "key", key)

	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		util.RecordSpanError(span, err)
	}
	return err
}

func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "Storage/Download")
	defer span.End()
	util.SetSpanAttrs(span, "key", key)

	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		util.RecordSpanError(span, err)
		return nil, err
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(obj); err != nil {
		util.RecordSpanError(span, err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) Close() error {
	return nil
}
