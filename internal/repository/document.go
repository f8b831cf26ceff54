package repository

import (
	"context"
	"errors"
	"time"

	"docmcp/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned when an identifier is not well-formed for the backend.
	ErrInvalidID = errors.New("invalid document id")
)

// DocumentRepository defines data access for the documents collection.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Insert stores a new record and returns the identifier assigned by the store.
	Insert(ctx context.Context, rec *model.DocumentRecord) (string, error)

	// FindByID returns the record with the given id. When pathFilter is non-empty the
	// record must also have that path. Returns ErrNotFound when nothing matches.
	FindByID(ctx context.Context, id, pathFilter string) (*model.DocumentRecord, error)

	// Update overwrites path, content and updatedAt. createdAt is never touched.
	Update(ctx context.Context, id, path string, content map[string]any, updatedAt time.Time) error

	// Delete removes the record and reports whether a row was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// MetadataRepository defines data access for the file metadata collection, keyed by path.
type MetadataRepository interface {
	// ListByPathPrefix returns every record whose path starts with the literal prefix.
	ListByPathPrefix(ctx context.Context, prefix string) ([]model.FileMetadata, error)

	// FindByPath returns ErrNotFound when no record exists for path.
	FindByPath(ctx context.Context, path string) (*model.FileMetadata, error)

	// Insert adds a new record. It fails if one already exists for the path.
	Insert(ctx context.Context, meta *model.FileMetadata) error

	// Upsert replaces the record for meta.Path, creating it when absent.
	Upsert(ctx context.Context, meta *model.FileMetadata) error

	// DeleteByPath removes the record and reports whether one existed.
	DeleteByPath(ctx context.Context, path string) (bool, error)
}
