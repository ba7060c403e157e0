package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pizzabot/pizzabot/internal/storage"
)

var ErrBucketMissing = errors.New("s3 bucket does not exist")

type Config struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

// bucketAPI is the slice of the S3 API the seed store needs.
type bucketAPI interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (storage.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucket, key string) (storage.ObjectInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket, region string) error
}

// Store keeps parquet menu seeds in one bucket, optionally under a key prefix.
type Store struct {
	api    bucketAPI
	bucket string
	prefix string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	host, secure, err := cfg.hostAndTLS()
	if err != nil {
		return nil, err
	}
	mc, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	store, err := newStore(strings.TrimSpace(cfg.Bucket), cfg.Prefix, minioAPI{mc: mc})
	if err != nil {
		return nil, err
	}
	if cfg.AutoCreateBucket {
		if err := store.createBucketIfMissing(ctx, strings.TrimSpace(cfg.Region)); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func newStore(bucket, prefix string, api bucketAPI) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix != "" {
		prefix = path.Clean(prefix)
	}
	return &Store{api: api, bucket: bucket, prefix: prefix}, nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, opts storage.PutOptions) (storage.ObjectInfo, error) {
	fullKey, err := s.objectKey(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	info, err := s.api.PutObject(ctx, s.bucket, fullKey, body, size, opts.ContentType)
	if err != nil {
		return storage.ObjectInfo{}, wrap("put", fullKey, err)
	}
	return info, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	body, err := s.api.GetObject(ctx, s.bucket, fullKey)
	if err != nil {
		return nil, wrap("get", fullKey, err)
	}
	return body, nil
}

func (s *Store) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	fullKey, err := s.objectKey(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	info, err := s.api.StatObject(ctx, s.bucket, fullKey)
	if err != nil {
		return storage.ObjectInfo{}, wrap("stat", fullKey, err)
	}
	return info, nil
}

// HealthCheck reports whether the seed bucket is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrBucketMissing, s.bucket)
	}
	return nil
}

func (s *Store) createBucketIfMissing(ctx context.Context, region string) error {
	err := s.HealthCheck(ctx)
	if err == nil || !errors.Is(err, ErrBucketMissing) {
		return err
	}
	if err := s.api.MakeBucket(ctx, s.bucket, region); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	return nil
}

// objectKey joins key onto the store prefix. Keys may not climb out of it.
func (s *Store) objectKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	cleaned := path.Clean(key)
	if cleaned == "." {
		return "", errors.New("object key is required")
	}
	return path.Join(s.prefix, cleaned), nil
}

// hostAndTLS accepts either a bare host:port or a URL. An explicit scheme
// wins over UseSSL.
func (c Config) hostAndTLS() (string, bool, error) {
	raw := strings.TrimSpace(c.Endpoint)
	if raw == "" {
		return "", false, errors.New("s3 endpoint is required")
	}
	if !strings.Contains(raw, "://") {
		return raw, c.UseSSL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse s3 endpoint: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("s3 endpoint %q has no host", raw)
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("s3 endpoint scheme %q is not supported", u.Scheme)
	}
}

func wrap(op, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	return fmt.Errorf("%s object %q: %w", op, key, err)
}

type minioAPI struct {
	mc *minio.Client
}

func (m minioAPI) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (storage.ObjectInfo, error) {
	info, err := m.mc.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return storage.ObjectInfo{}, notFound(err)
	}
	return storage.ObjectInfo{Key: info.Key, Size: info.Size, ETag: info.ETag, LastModified: info.LastModified}, nil
}

// GetObject is lazy in minio-go; the Stat call surfaces a missing key here
// instead of on the first Read.
func (m minioAPI) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, notFound(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, notFound(err)
	}
	return obj, nil
}

func (m minioAPI) StatObject(ctx context.Context, bucket, key string) (storage.ObjectInfo, error) {
	info, err := m.mc.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return storage.ObjectInfo{}, notFound(err)
	}
	return storage.ObjectInfo{Key: info.Key, Size: info.Size, ETag: info.ETag, LastModified: info.LastModified}, nil
}

func (m minioAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return m.mc.BucketExists(ctx, bucket)
}

func (m minioAPI) MakeBucket(ctx context.Context, bucket, region string) error {
	return m.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func notFound(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return storage.ErrObjectNotFound
	}
	return err
}
