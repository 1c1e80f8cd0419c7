// Package intake validates and durably stores uploaded attachments. A primary
// attachment failing any rule rejects the whole submission; secondary
// screenshots are tolerant-validated and skipped when invalid.
package intake

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenworks/submission-api/internal/types"
)

var tracer = otel.Tracer("github.com/lumenworks/submission-api/internal/intake")

type Category string

const (
	CategoryImage   Category = "image"
	CategoryArchive Category = "archive"
)

// Form field and stored-name tag for each primary category.
func (c Category) tag() string {
	if c == CategoryArchive {
		return "project"
	}

	return "screenshot"
}

func (c Category) defaultName() string {
	if c == CategoryArchive {
		return "project.zip"
	}

	return "screenshot.png"
}

// Upload is one candidate attachment as delivered by the transport.
type Upload struct {
	Content     io.Reader
	Name        string
	ContentType string
}

type Intake struct {
	store BlobStore
}

func New(store BlobStore) *Intake {
	return &Intake{store: store}
}

var (
	imageExtensions   = map[string]bool{"png": true, "jpg": true, "jpeg": true}
	imageContentTypes = map[string]bool{"image/png": true, "image/jpeg": true}

	archiveExtensions   = map[string]bool{"zip": true}
	archiveContentTypes = map[string]bool{
		"application/zip":              true,
		"application/x-zip-compressed": true,
	}
)

// validate applies the category rules in order and reports the first
// violation as a FieldError on field. Never coerces.
func validate(up Upload, category Category, field string) *types.FieldError {
	if strings.TrimSpace(up.Name) == "" {
		return types.NewFieldError(field, "no file selected")
	}

	dot := strings.LastIndex(up.Name, ".")
	if dot < 0 || dot == len(up.Name)-1 {
		return types.NewFieldError(field, invalidExtensionReason(category))
	}
	ext := strings.ToLower(up.Name[dot+1:])

	switch category {
	case CategoryArchive:
		if !archiveExtensions[ext] {
			return types.NewFieldError(field, invalidExtensionReason(category))
		}
		if !archiveContentTypes[up.ContentType] {
			return types.NewFieldError(field, "invalid file content type, only ZIP files are allowed")
		}
	default:
		if !imageExtensions[ext] {
			return types.NewFieldError(field, invalidExtensionReason(category))
		}
		if !imageContentTypes[up.ContentType] {
			return types.NewFieldError(field, "invalid file content type")
		}
	}

	return nil
}

func invalidExtensionReason(category Category) string {
	if category == CategoryArchive {
		return "invalid file type, only .zip files allowed"
	}

	return "invalid file type, only .jpg, .jpeg, .png files allowed"
}

var unsafeRunes = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// sanitizeName strips path separators, traversal sequences and anything that
// is not a safe filename rune. May return "" when nothing survives.
func sanitizeName(name string) string {
	name = strings.Join(strings.Fields(name), "_")
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeRunes.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// storedName builds the unique, traceable on-disk name:
// timestamp, category tag, then the sanitized original name.
func storedName(now time.Time, tag, original, fallback string) string {
	name := sanitizeName(original)
	if name == "" {
		name = fallback
	}

	return fmt.Sprintf("%s_%s_%s", now.UTC().Format("20060102_150405"), tag, name)
}

// StorePrimary validates and persists the single required attachment.
// Any rule violation fails the whole intake.
func (i *Intake) StorePrimary(ctx context.Context, up Upload, category Category) (string, error) {
	ctx, span := tracer.Start(ctx, "StorePrimary", trace.WithAttributes(
		attribute.String("file.name", up.Name),
		attribute.String("file.content_type", up.ContentType),
		attribute.String("category", string(category)),
	))
	defer span.End()

	if fieldErr := validate(up, category, category.tag()); fieldErr != nil {
		span.RecordError(fieldErr)
		span.SetStatus(codes.Ok, "rejected primary attachment")
		return "", fieldErr
	}

	name := storedName(time.Now(), category.tag(), up.Name, category.defaultName())

	span.AddEvent("storing primary attachment", trace.WithAttributes(
		attribute.String("blob.name", name),
	))
	path, err := i.store.Put(ctx, name, up.Content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store primary attachment")
		return "", fmt.Errorf("%w: failed to store primary attachment: %w", types.ErrPersistence, err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "stored primary attachment")
	return path, nil
}

// StoreSecondary persists zero or more optional screenshots. Candidates that
// fail validation are skipped, not surfaced; a storage failure still fails
// the intake. Returns the ordered list of stored paths.
func (i *Intake) StoreSecondary(ctx context.Context, ups []Upload) ([]string, error) {
	ctx, span := tracer.Start(ctx, "StoreSecondary", trace.WithAttributes(
		attribute.Int("candidates", len(ups)),
	))
	defer span.End()

	now := time.Now()
	paths := []string{}
	for n, up := range ups {
		if fieldErr := validate(up, CategoryImage, "additional_screenshots"); fieldErr != nil {
			span.AddEvent("skipping invalid secondary attachment", trace.WithAttributes(
				attribute.Int("index", n),
				attribute.String("file.name", up.Name),
				attribute.String("reason", fieldErr.Reason),
			))
			continue
		}

		tag := fmt.Sprintf("additional_%d", n+1)
		name := storedName(now, tag, up.Name, fmt.Sprintf("screenshot_%d.png", n+1))

		path, err := i.store.Put(ctx, name, up.Content)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to store secondary attachment")
			return nil, fmt.Errorf(
				"%w: failed to store secondary attachment: %w",
				types.ErrPersistence,
				err,
			)
		}

		paths = append(paths, path)
	}

	span.SetAttributes(attribute.Int("stored", len(paths)))
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "stored secondary attachments")
	return paths, nil
}
