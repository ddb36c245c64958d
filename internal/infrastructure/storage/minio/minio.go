package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"devhub/internal/config"
	"devhub/internal/domain/picture"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const keyPrefix = "profiles/"

// Storage keeps pictures in an S3-compatible bucket.
type Storage struct {
	client  *mclient.Client
	bucket  string
	baseURL string
}

func New(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	endpoint, secure, err := parseEndpoint(cfg.S3Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("minio bucket %q does not exist", cfg.S3Bucket)
	}

	base := cfg.S3PublicBaseURL
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		base = scheme + "://" + endpoint + "/" + cfg.S3Bucket
	}

	return &Storage{client: client, bucket: cfg.S3Bucket, baseURL: strings.TrimRight(base, "/")}, nil
}

var _ picture.Storage = (*Storage)(nil)

func (s *Storage) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error {
	key, err := objectKey(name)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, mclient.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put picture: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, name string) error {
	key, err := objectKey(name)
	if err != nil {
		return err
	}
	err = s.client.RemoveObject(ctx, s.bucket, key, mclient.RemoveObjectOptions{})
	if err != nil {
		resp := mclient.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return nil
		}
		return fmt.Errorf("remove picture: %w", err)
	}
	return nil
}

func (s *Storage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + "/" + keyPrefix + name
}

func objectKey(name string) (string, error) {
	if name == "" || path.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", picture.ErrInvalidName
	}
	return keyPrefix + name, nil
}

var errNoEndpoint = errors.New("empty minio endpoint")

// parseEndpoint strips the scheme from a configured endpoint; an https scheme
// turns TLS on.
func parseEndpoint(raw string) (host string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errNoEndpoint
	}
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return u.Host, u.Scheme == "https", nil
	}
	return raw, false, nil
}
