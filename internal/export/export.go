// Package export writes a generated table to a file. Every writer goes
// through a temporary file in the target directory and renames it into place,
// so a failed run never leaves a partial output behind.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

const DefaultSheet = "Sheet1"

type Options struct {
	Format string // xlsx, csv, json, parquet or sqlite
	Path   string
	Table  string // sqlite table name
	Sheet  string // xlsx sheet name
	Batch  int

	// JSON metadata
	RunID string
	Seed  uint64
	Now   time.Time
}

type writerFunc func(ctx context.Context, path string, table *types.Table, opts Options) error

var writers = map[string]writerFunc{
	"csv":     writeCSV,
	"json":    writeJSON,
	"xlsx":    writeXLSX,
	"parquet": writeParquet,
	"sqlite":  writeSQLite,
}

// Write exports table in the requested format and returns the final path.
func Write(ctx context.Context, table *types.Table, opts Options) (string, error) {
	write, ok := writers[opts.Format]
	if !ok {
		return "", fmt.Errorf("unsupported export format: %s", opts.Format)
	}
	if opts.Path == "" {
		return "", fmt.Errorf("output path is required")
	}

	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cohortgen-*."+opts.Format)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := write(ctx, tmpPath, table, opts); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", opts.Format, err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpPath, opts.Path); err != nil {
		return "", fmt.Errorf("failed to move output into place: %w", err)
	}
	return opts.Path, nil
}

// createFile truncates and opens the temporary path for a streaming writer.
func createFile(path string, fill func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
