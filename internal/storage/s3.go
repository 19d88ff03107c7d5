package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	appconfig "github.com/sirdesai22/recap-service/internal/config"
)

// S3Store keeps recap images, avatars and legacy recap files in an
// S3-compatible bucket and hands out stable public URLs for them.
type S3Store struct {
	client  *s3.Client
	cfg     appconfig.S3
	maxRead int64
}

func NewS3Store(ctx context.Context, cfg appconfig.S3, maxRead int64) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	// Explicit keys win; otherwise the default chain (env, IAM role) applies.
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO and friends
		})
	}

	log.WithFields(log.Fields{
		"bucket":   cfg.Bucket,
		"prefix":   cfg.Prefix,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
	}).Info("🪣 S3 store initialized")

	return &S3Store{client: s3.NewFromConfig(awsCfg, s3Opts...), cfg: cfg, maxRead: maxRead}, nil
}

func (s *S3Store) fullKey(key string) string {
	if s.cfg.Prefix == "" {
		return strings.TrimPrefix(key, "/")
	}
	return strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

// baseURL is where objects are publicly served from, without a trailing slash.
func (s *S3Store) baseURL() string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/")
	case s.cfg.Endpoint != "":
		return strings.TrimSuffix(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
}

// PublicURL is the stable URL stored in recap content for key.
func (s *S3Store) PublicURL(key string) string {
	return s.baseURL() + "/" + s.fullKey(key)
}

// KeyForURL reverses PublicURL. It reports false for URLs outside the bucket.
func (s *S3Store) KeyForURL(raw string) (string, bool) {
	rest, ok := strings.CutPrefix(raw, s.baseURL()+"/")
	if !ok || rest == "" {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if s.cfg.Prefix != "" {
		if rest, ok = strings.CutPrefix(rest, strings.TrimSuffix(s.cfg.Prefix, "/")+"/"); !ok {
			return "", false
		}
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return key, key != ""
}

// UploadKey names a new object under folder, keeping the original file extension.
func UploadKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, time.Now().UTC().Format("2006/01"), uuid.NewString()+ext)
}

// Upload stores data under key and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	fullKey := s.fullKey(key)
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(fullKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("upload %s: %w", fullKey, err)
	}

	log.WithFields(log.Fields{"bucket": s.cfg.Bucket, "key": fullKey, "bytes": len(data)}).Info("⬆️ Uploaded object")
	return s.PublicURL(key), nil
}

// Read downloads an object, refusing anything larger than the configured limit.
func (s *S3Store) Read(ctx context.Context, key string) ([]byte, error) {
	fullKey := s.fullKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", fullKey, err)
	}
	defer out.Body.Close()

	limit := s.maxRead
	if limit <= 0 {
		limit = 32 << 20
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fullKey, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("read %s: larger than %d bytes", fullKey, limit)
	}
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	fullKey := s.fullKey(key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", fullKey, err)
	}
	log.WithFields(log.Fields{"bucket": s.cfg.Bucket, "key": fullKey}).Info("🗑️ Deleted object")
	return nil
}
