package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Generic attachment persistence interface. Write-once-by-path: a second Put
// for the same name is an error, never an overwrite.
type BlobStore interface {
	// Persist the contents of reader under name. Returns the path the
	// record should reference the blob by.
	Put(ctx context.Context, name string, reader io.Reader) (string, error)
	// Check if a blob already exists under name.
	Exists(ctx context.Context, name string) (bool, error)
	// Identifier for where blobs are written. Useful for logging and auditing purposes.
	StoreIdentifier(ctx context.Context) (string, error)
}

// DiskStore writes blobs into a local directory. The directory is created on
// first write and the path stored in the record is relative to the process,
// matching how the uploads route serves it back.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (d *DiskStore) Put(ctx context.Context, name string, reader io.Reader) (string, error) {
	_, span := tracer.Start(ctx, "DiskStore.Put", trace.WithAttributes(
		attribute.String("blob.name", name),
		attribute.String("store.dir", d.dir),
	))
	defer span.End()

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create storage root")
		return "", fmt.Errorf("failed to create storage root: %w", err)
	}

	dst := filepath.Join(d.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create blob file")
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write blob contents")
		return "", fmt.Errorf("failed to write blob contents: %w", err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "wrote blob")
	return filepath.ToSlash(dst), nil
}

func (d *DiskStore) Exists(ctx context.Context, name string) (bool, error) {
	_, span := tracer.Start(ctx, "DiskStore.Exists", trace.WithAttributes(
		attribute.String("blob.name", name),
	))
	defer span.End()

	_, err := os.Stat(filepath.Join(d.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stat blob")
		return false, fmt.Errorf("failed to stat blob: %w", err)
	}

	return true, nil
}

func (d *DiskStore) StoreIdentifier(_ context.Context) (string, error) {
	return d.dir, nil
}
