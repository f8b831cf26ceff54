package memory

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"docmcp/internal/model"
	"docmcp/internal/repository"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// Store keeps both collections in process memory. Ids follow the 24-hex shape of
// MongoDB ObjectIDs so the same inputs are valid on every backend.
type Store struct {
	mu       sync.RWMutex
	seq      uint64
	docs     map[string]model.DocumentRecord
	metadata map[string]model.FileMetadata
	order    []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		docs:     make(map[string]model.DocumentRecord),
		metadata: make(map[string]model.FileMetadata),
	}
}

// Documents returns the documents view of the store.
func (s *Store) Documents() *DocumentMemory { return &DocumentMemory{s: s} }

// Metadata returns the metadata view of the store.
func (s *Store) Metadata() *MetadataMemory { return &MetadataMemory{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// DocumentMemory implements repository.DocumentRepository.
type DocumentMemory struct{ s *Store }

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

func (r *DocumentMemory) Insert(_ context.Context, rec *model.DocumentRecord) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq++
	id := fmt.Sprintf("%024x", r.s.seq)
	stored := *rec
	stored.ID = id
	stored.Content = cloneContent(rec.Content)
	r.s.docs[id] = stored
	return id, nil
}

func (r *DocumentMemory) FindByID(_ context.Context, id, pathFilter string) (*model.DocumentRecord, error) {
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.docs[id]
	if !ok || (pathFilter != "" && rec.Path != pathFilter) {
		return nil, repository.ErrNotFound
	}
	rec.Content = cloneContent(rec.Content)
	return &rec, nil
}

func (r *DocumentMemory) Update(_ context.Context, id, path string, content map[string]any, updatedAt time.Time) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Path = path
	rec.Content = cloneContent(content)
	rec.UpdatedAt = updatedAt
	r.s.docs[id] = rec
	return nil
}

func (r *DocumentMemory) Delete(_ context.Context, id string) (bool, error) {
	if !idPattern.MatchString(id) {
		return false, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.docs[id]; !ok {
		return false, nil
	}
	delete(r.s.docs, id)
	return true, nil
}

// Len reports the number of stored documents.
func (r *DocumentMemory) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.docs)
}

// MetadataMemory implements repository.MetadataRepository. Listing preserves
// insertion order, like a collection scan.
type MetadataMemory struct{ s *Store }

var _ repository.MetadataRepository = (*MetadataMemory)(nil)

func (r *MetadataMemory) ListByPathPrefix(_ context.Context, prefix string) ([]model.FileMetadata, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]model.FileMetadata, 0)
	for _, path := range r.s.order {
		if strings.HasPrefix(path, prefix) {
			items = append(items, r.s.metadata[path])
		}
	}
	return items, nil
}

func (r *MetadataMemory) FindByPath(_ context.Context, path string) (*model.FileMetadata, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.metadata[path]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MetadataMemory) Insert(_ context.Context, meta *model.FileMetadata) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.metadata[meta.Path]; ok {
		return fmt.Errorf("duplicate metadata path %q", meta.Path)
	}
	r.s.metadata[meta.Path] = *meta
	r.s.order = append(r.s.order, meta.Path)
	return nil
}

func (r *MetadataMemory) Upsert(_ context.Context, meta *model.FileMetadata) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.metadata[meta.Path]; !ok {
		r.s.order = append(r.s.order, meta.Path)
	}
	r.s.metadata[meta.Path] = *meta
	return nil
}

func (r *MetadataMemory) DeleteByPath(_ context.Context, path string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.metadata[path]; !ok {
		return false, nil
	}
	delete(r.s.metadata, path)
	if i := slices.Index(r.s.order, path); i >= 0 {
		r.s.order = slices.Delete(r.s.order, i, i+1)
	}
	return true, nil
}

// cloneContent deep-copies the JSON-shaped values a document can hold so callers
// never share nested maps or slices with the store.
func cloneContent(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneContent(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
