// Package share publishes exported reports, either into a local folder or
// to an S3-compatible bucket behind a time-limited link.
package share

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pbaille/unikit/internal/config"
)

// Provider stores a document and returns where it can be opened from
type Provider interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// New returns the provider selected by cfg
func New(cfg config.ShareConfig) (Provider, error) {
	switch cfg.Driver {
	case "", "local":
		return &Local{Dir: cfg.Dir}, nil
	case "minio":
		return NewMinio(cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown share driver %q", cfg.Driver)
	}
}

// Local copies documents into a directory
type Local struct {
	Dir string
}

func (p *Local) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	dst, err := filepath.Abs(filepath.Join(p.Dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("create share dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return "file://" + filepath.ToSlash(dst), nil
}

// Minio uploads documents to a bucket and hands out presigned GET links
type Minio struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinio(cfg config.MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Minio{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

func (p *Minio) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, p.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return p.presign(ctx, name)
}

func (p *Minio) presign(ctx context.Context, name string) (string, error) {
	u, err := p.client.PresignedGetObject(ctx, p.bucket, name, p.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", name, err)
	}
	return u.String(), nil
}

// ObjectName builds a unique, sortable name for a shared document
func ObjectName(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", kind, now.UTC().Format("20060102-150405"), ext)
}
