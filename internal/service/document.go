package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"docmcp/internal/fsmeta"
	"docmcp/internal/model"
	"docmcp/internal/repository"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrMissingID = errors.New("document ID is required for update")
)

// Timestamps are kept at millisecond precision, the coarsest any backend stores.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// DocumentService defines the use cases for handling documents and their metadata.
//
// Documents and metadata live in separate collections and every write below is a
// separate repository call. There is no transaction spanning the two: a failure
// between the calls leaves the first write in place.
type DocumentService interface {
	// ListByPathPrefix returns metadata for every file whose path starts with prefix.
	ListByPathPrefix(ctx context.Context, prefix string) ([]model.FileMetadata, error)

	// GetByID returns the document joined with its metadata. When the metadata row is
	// missing a default record is synthesized. Returns ErrNotFound when nothing matches.
	GetByID(ctx context.Context, id, pathFilter string) (*model.Document, error)

	// Create inserts the document row, then the metadata row keyed by the document path.
	Create(ctx context.Context, doc *model.Document) (*model.DocumentResponse, error)

	// Update overwrites an existing document and upserts its metadata.
	Update(ctx context.Context, doc *model.Document) (*model.DocumentResponse, error)

	// Delete removes the document and, best effort, its metadata. It reports whether
	// the document row was removed; an unknown id yields false without writes.
	Delete(ctx context.Context, id string) (bool, error)

	// SeedMetadata upserts scanned metadata records and returns how many were written.
	SeedMetadata(ctx context.Context, files []model.FileMetadata) (int, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	docs repository.DocumentRepository
	meta repository.MetadataRepository
	log  *zap.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(docs repository.DocumentRepository, meta repository.MetadataRepository, log *zap.Logger) DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &documentService{docs: docs, meta: meta, log: log.Named("document_service")}
}

func (s *documentService) ListByPathPrefix(ctx context.Context, prefix string) ([]model.FileMetadata, error) {
	files, err := s.meta.ListByPathPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list metadata: %w", err)
	}
	if files == nil {
		files = []model.FileMetadata{}
	}
	return files, nil
}

func (s *documentService) GetByID(ctx context.Context, id, pathFilter string) (*model.Document, error) {
	rec, err := s.docs.FindByID(ctx, id, pathFilter)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	meta, err := s.meta.FindByPath(ctx, rec.Path)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		meta = defaultMetadata(rec)
	case err != nil:
		return nil, fmt.Errorf("find metadata: %w", err)
	}

	return &model.Document{
		DocumentID: rec.ID,
		Path:       rec.Path,
		Content:    rec.Content,
		Metadata:   *meta,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (s *documentService) Create(ctx context.Context, doc *model.Document) (*model.DocumentResponse, error) {
	ts := now()
	content := doc.Content
	if content == nil {
		content = map[string]any{}
	}

	id, err := s.docs.Insert(ctx, &model.DocumentRecord{
		Path:      doc.Path,
		Content:   content,
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	meta := doc.Metadata
	meta.Path = doc.Path
	meta.CreatedAt = ts
	meta.UpdatedAt = ts
	if err := s.meta.Insert(ctx, &meta); err != nil {
		s.log.Error("metadata insert failed, document row kept",
			zap.String("document_id", id),
			zap.String("path", doc.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert metadata: %w", err)
	}

	return &model.DocumentResponse{DocumentID: id, Path: doc.Path, Metadata: meta}, nil
}

func (s *documentService) Update(ctx context.Context, doc *model.Document) (*model.DocumentResponse, error) {
	if doc.DocumentID == "" {
		return nil, ErrMissingID
	}

	if _, err := s.docs.FindByID(ctx, doc.DocumentID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ts := now()
	content := doc.Content
	if content == nil {
		content = map[string]any{}
	}
	if err := s.docs.Update(ctx, doc.DocumentID, doc.Path, content, ts); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	meta := doc.Metadata
	meta.Path = doc.Path
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = ts
	}
	meta.UpdatedAt = ts
	if err := s.meta.Upsert(ctx, &meta); err != nil {
		s.log.Error("metadata upsert failed, document row updated",
			zap.String("document_id", doc.DocumentID),
			zap.String("path", doc.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("upsert metadata: %w", err)
	}

	return &model.DocumentResponse{DocumentID: doc.DocumentID, Path: doc.Path, Metadata: meta}, nil
}

func (s *documentService) Delete(ctx context.Context, id string) (bool, error) {
	rec, err := s.docs.FindByID(ctx, id, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.docs.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}

	if rec.Path != "" {
		if _, err := s.meta.DeleteByPath(ctx, rec.Path); err != nil {
			s.log.Warn("metadata delete failed",
				zap.String("document_id", id),
				zap.String("path", rec.Path),
				zap.Error(err),
			)
		}
	}
	return deleted, nil
}

func (s *documentService) SeedMetadata(ctx context.Context, files []model.FileMetadata) (int, error) {
	for i := range files {
		if err := s.meta.Upsert(ctx, &files[i]); err != nil {
			return i, fmt.Errorf("upsert metadata %s: %w", files[i].Path, err)
		}
	}
	return len(files), nil
}

func defaultMetadata(rec *model.DocumentRecord) *model.FileMetadata {
	return &model.FileMetadata{
		Path:        rec.Path,
		Name:        path.Base(rec.Path),
		Description: model.DefaultDescription,
		FileType:    fsmeta.TypeByExtension(rec.Path),
		Size:        0,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
