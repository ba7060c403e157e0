package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

const ParquetContentType = "application/vnd.apache.parquet"

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildSeedSnapshotKey returns the archive key for a menu snapshot exported at
// the given time, e.g. seed/snapshots/date=2026-02-19/pizzas-090500.parquet.
func BuildSeedSnapshotKey(dir, menu string, exportedAt time.Time) (string, error) {
	if err := validatePathComponent(menu, "menu name"); err != nil {
		return "", err
	}
	cleanedDir, err := cleanDir(dir)
	if err != nil {
		return "", err
	}

	ts := exportedAt.UTC()
	return path.Join(
		cleanedDir,
		"snapshots",
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("%s-%02d%02d%02d.parquet", menu, ts.Hour(), ts.Minute(), ts.Second()),
	), nil
}

// SeedDir returns the directory part of the configured seed object key.
func SeedDir(objectKey string) string {
	dir := path.Dir(strings.TrimPrefix(strings.TrimSpace(objectKey), "/"))
	if dir == "." {
		return ""
	}
	return dir
}

func cleanDir(dir string) (string, error) {
	dir = strings.Trim(strings.TrimSpace(dir), "/")
	if dir == "" {
		return "", nil
	}
	for _, part := range strings.Split(dir, "/") {
		if err := validatePathComponent(part, "directory"); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
