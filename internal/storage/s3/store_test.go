package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pizzabot/pizzabot/internal/storage"
)

func TestPutJoinsPrefixAndContentType(t *testing.T) {
	api := newFakeAPI(true)
	store := mustStore(t, "/pizzabot/prod/", api)

	info, err := store.Put(context.Background(), "/seed/pizzas.parquet", bytes.NewBufferString("abc"), 3, storage.PutOptions{ContentType: storage.ParquetContentType})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if info.Key != "pizzabot/prod/seed/pizzas.parquet" {
		t.Fatalf("Put().Key = %q", info.Key)
	}
	if got := api.contentTypes["pizzabot/prod/seed/pizzas.parquet"]; got != storage.ParquetContentType {
		t.Fatalf("content type = %q", got)
	}
}

func TestObjectKeyRejectsEscapesAndEmptyKeys(t *testing.T) {
	store := mustStore(t, "seed-root", newFakeAPI(true))
	for _, key := range []string{"../secrets.txt", "seed/../../x", "", " / ", "."} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), 1, storage.PutOptions{}); err == nil {
			t.Fatalf("Put(%q) expected key validation error", key)
		}
	}
	if key, err := store.objectKey("seed/./pizzas.parquet"); err != nil || key != "seed-root/seed/pizzas.parquet" {
		t.Fatalf("objectKey() = %q, %v", key, err)
	}
}

func TestGetAndStatReportMissingObject(t *testing.T) {
	store := mustStore(t, "", newFakeAPI(true))

	if _, err := store.Get(context.Background(), "seed/pizzas.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Get() error = %v, want ErrObjectNotFound", err)
	}
	if _, err := store.Stat(context.Background(), "seed/pizzas.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat() error = %v, want ErrObjectNotFound", err)
	}
}

func TestStatReturnsStoredSize(t *testing.T) {
	store := mustStore(t, "menus", newFakeAPI(true))
	ctx := context.Background()
	if _, err := store.Put(ctx, "seed/pizzas.parquet", strings.NewReader("parquet!"), 8, storage.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	info, err := store.Stat(ctx, "seed/pizzas.parquet")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != 8 || info.Key != "menus/seed/pizzas.parquet" {
		t.Fatalf("Stat() = %+v", info)
	}

	body, err := store.Get(ctx, "seed/pizzas.parquet")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = body.Close() }()
	payload, _ := io.ReadAll(body)
	if string(payload) != "parquet!" {
		t.Fatalf("Get() payload = %q", payload)
	}
}

func TestCreateBucketIfMissing(t *testing.T) {
	api := newFakeAPI(false)
	store := mustStore(t, "", api)

	if err := store.createBucketIfMissing(context.Background(), "us-east-1"); err != nil {
		t.Fatalf("createBucketIfMissing() error = %v", err)
	}
	if api.madeRegion != "us-east-1" {
		t.Fatalf("MakeBucket region = %q", api.madeRegion)
	}

	api.madeRegion = ""
	if err := store.createBucketIfMissing(context.Background(), "us-east-1"); err != nil {
		t.Fatalf("second createBucketIfMissing() error = %v", err)
	}
	if api.madeRegion != "" {
		t.Fatal("MakeBucket called for an existing bucket")
	}
}

func TestHealthCheckReportsMissingBucket(t *testing.T) {
	if err := mustStore(t, "", newFakeAPI(false)).HealthCheck(context.Background()); !errors.Is(err, ErrBucketMissing) {
		t.Fatalf("HealthCheck() error = %v, want ErrBucketMissing", err)
	}
	if err := mustStore(t, "", newFakeAPI(true)).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
}

func TestHostAndTLS(t *testing.T) {
	tests := []struct {
		cfg    Config
		host   string
		secure bool
	}{
		{cfg: Config{Endpoint: "https://minio.example.com"}, host: "minio.example.com", secure: true},
		{cfg: Config{Endpoint: "http://localhost:9000", UseSSL: true}, host: "localhost:9000", secure: false},
		{cfg: Config{Endpoint: "localhost:9000"}, host: "localhost:9000", secure: false},
		{cfg: Config{Endpoint: "s3.example.com", UseSSL: true}, host: "s3.example.com", secure: true},
	}
	for _, tt := range tests {
		host, secure, err := tt.cfg.hostAndTLS()
		if err != nil {
			t.Fatalf("hostAndTLS(%q) error = %v", tt.cfg.Endpoint, err)
		}
		if host != tt.host || secure != tt.secure {
			t.Fatalf("hostAndTLS(%q) = %q/%v, want %q/%v", tt.cfg.Endpoint, host, secure, tt.host, tt.secure)
		}
	}

	for _, endpoint := range []string{"", "ftp://minio", "https://"} {
		if _, _, err := (Config{Endpoint: endpoint}).hostAndTLS(); err == nil {
			t.Fatalf("hostAndTLS(%q) expected error", endpoint)
		}
	}
}

func TestNewStoreRequiresBucket(t *testing.T) {
	if _, err := newStore("", "", newFakeAPI(true)); err == nil {
		t.Fatal("expected bucket validation error")
	}
}

func mustStore(t *testing.T, prefix string, api bucketAPI) *Store {
	t.Helper()
	store, err := newStore("pizzabot-seeds", prefix, api)
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	return store
}

type fakeAPI struct {
	exists       bool
	madeRegion   string
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeAPI(exists bool) *fakeAPI {
	return &fakeAPI{exists: exists, objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeAPI) PutObject(_ context.Context, _, key string, body io.Reader, size int64, contentType string) (storage.ObjectInfo, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	f.objects[key] = payload
	f.contentTypes[key] = contentType
	return storage.ObjectInfo{Key: key, Size: size}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, _, key string) (io.ReadCloser, error) {
	payload, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (f *fakeAPI) StatObject(_ context.Context, _, key string) (storage.ObjectInfo, error) {
	payload, ok := f.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(payload))}, nil
}

func (f *fakeAPI) BucketExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeAPI) MakeBucket(_ context.Context, _, region string) error {
	f.madeRegion = region
	f.exists = true
	return nil
}
