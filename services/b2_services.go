package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/kurin/blazer/b2"
)

const (
	downloadURLTTL = 24 * time.Hour
	previewURLTTL  = 1 * time.Hour
)

// ObjectStorage stores file contents under opaque keys.
type ObjectStorage interface {
	// Put streams r to key and returns the SHA-1 of the written bytes.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// SignedURL returns a time-limited GET URL for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type B2Service struct {
	client     *b2.Client
	bucketName string
	bucket     *b2.Bucket
}

func NewB2Service(ctx context.Context, keyID, applicationKey, bucketName string) (*B2Service, error) {
	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &B2Service{
		client:     client,
		bucketName: bucketName,
		bucket:     bucket,
	}, nil
}

func (s *B2Service) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	writer := s.bucket.Object(key).NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{ContentType: contentType}))

	// Stream request body to B2 and the hasher in one pass
	hasher := sha1.New()
	if _, err := io.Copy(io.MultiWriter(writer, hasher), r); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to upload file to B2: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close B2 writer: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (s *B2Service) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	urlObj, err := s.bucket.Object(key).AuthURL(ctx, ttl, "")
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return urlObj.String(), nil
}

func (s *B2Service) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file from B2: %w", err)
	}
	return nil
}

// IsPreviewableFile reports whether browsers can render the file inline.
func IsPreviewableFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	previewableExts := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
		".svg":  true,
		".pdf":  true,
		".txt":  true,
		".mp4":  true,
		".webm": true,
		".mp3":  true,
		".wav":  true,
	}
	return previewableExts[ext]
}
