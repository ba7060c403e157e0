package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pizzabot/pizzabot/internal/catalog"
	"github.com/pizzabot/pizzabot/internal/config"
	"github.com/pizzabot/pizzabot/internal/storage"
)

const snapshotMenuName = "pizzas"

type Source interface {
	Name() string
	Load(ctx context.Context) ([]catalog.MenuItem, error)
}

type BuiltinSource struct{}

func (BuiltinSource) Name() string { return string(config.SeedSourceBuiltin) }

func (BuiltinSource) Load(context.Context) ([]catalog.MenuItem, error) {
	return Builtin(), nil
}

type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return string(config.SeedSourceParquet) + ":" + s.Path }

func (s FileSource) Load(context.Context) ([]catalog.MenuItem, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return DecodeParquet(data)
}

type ObjectSource struct {
	Store storage.ObjectStore
	Key   string
}

func (s ObjectSource) Name() string { return string(config.SeedSourceObjectStore) + ":" + s.Key }

func (s ObjectSource) Load(ctx context.Context) ([]catalog.MenuItem, error) {
	reader, err := s.Store.Get(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("get seed object: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read seed object: %w", err)
	}
	return DecodeParquet(data)
}

// NewSource picks the seed source named by cfg. objects may be nil unless the
// source is the object store.
func NewSource(cfg config.SeedConfig, objects storage.ObjectStore) (Source, error) {
	switch cfg.Source {
	case config.SeedSourceBuiltin, "":
		return BuiltinSource{}, nil
	case config.SeedSourceParquet:
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, fmt.Errorf("seed path is required for parquet source")
		}
		return FileSource{Path: cfg.Path}, nil
	case config.SeedSourceObjectStore:
		if objects == nil {
			return nil, fmt.Errorf("object store is required for objectstore seed source")
		}
		if strings.TrimSpace(cfg.ObjectKey) == "" {
			return nil, fmt.Errorf("seed object key is required")
		}
		return ObjectSource{Store: objects, Key: cfg.ObjectKey}, nil
	default:
		return nil, fmt.Errorf("unsupported seed source %q", cfg.Source)
	}
}

// Apply loads the source and replaces the catalog contents with it.
func Apply(ctx context.Context, store catalog.Store, source Source, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	items, err := source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load seed %s: %w", source.Name(), err)
	}
	if err := store.Reload(ctx, items); err != nil {
		return 0, fmt.Errorf("reload catalog: %w", err)
	}
	logger.InfoContext(ctx, "catalog seeded", slog.String("source", source.Name()), slog.Int("items", len(items)))
	return len(items), nil
}

type UploadResult struct {
	Key         string
	SnapshotKey string
	Size        int64
	ETag        string
}

// Upload writes items to key and archives a timestamped copy next to it.
func Upload(ctx context.Context, objects storage.ObjectStore, key string, items []catalog.MenuItem, now time.Time) (UploadResult, error) {
	data, err := EncodeParquet(items)
	if err != nil {
		return UploadResult{}, err
	}
	snapshotKey, err := storage.BuildSeedSnapshotKey(storage.SeedDir(key), snapshotMenuName, now)
	if err != nil {
		return UploadResult{}, err
	}

	opts := storage.PutOptions{ContentType: storage.ParquetContentType}
	if _, err := objects.Put(ctx, snapshotKey, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return UploadResult{}, fmt.Errorf("put seed snapshot: %w", err)
	}
	if _, err := objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return UploadResult{}, fmt.Errorf("put seed object: %w", err)
	}
	info, err := objects.Stat(ctx, key)
	if err != nil {
		return UploadResult{}, fmt.Errorf("verify seed object: %w", err)
	}
	if info.Size != int64(len(data)) {
		return UploadResult{}, fmt.Errorf("verify seed object: stored %d bytes, wrote %d", info.Size, len(data))
	}
	return UploadResult{Key: key, SnapshotKey: snapshotKey, Size: info.Size, ETag: info.ETag}, nil
}

// ObjectCheck reports whether the seed object at key exists, so a server
// seeded from the bucket is not ready when the next reload would fail.
func ObjectCheck(objects storage.ObjectStore, key string) func(context.Context) error {
	return func(ctx context.Context) error {
		if _, err := objects.Stat(ctx, key); err != nil {
			return fmt.Errorf("seed object %q: %w", key, err)
		}
		return nil
	}
}

// WriteFile exports items as a parquet file at path.
func WriteFile(path string, items []catalog.MenuItem) error {
	data, err := EncodeParquet(items)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}
