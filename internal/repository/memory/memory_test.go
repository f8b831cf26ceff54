package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmcp/internal/model"
	"docmcp/internal/repository"
)

func TestDocumentMemory(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Documents()
	now := time.Now()

	id, err := repo.Insert(ctx, &model.DocumentRecord{Path: "/a.json", Content: map[string]any{"x": 1}, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Len(t, id, 24)

	rec, err := repo.FindByID(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1}, rec.Content)

	_, err = repo.FindByID(ctx, id, "/b.json")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.FindByID(ctx, "nope", "")
	assert.ErrorIs(t, err, repository.ErrInvalidID)

	later := now.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, id, "/b.json", map[string]any{"y": 2}, later))
	rec, err = repo.FindByID(ctx, id, "/b.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"y": 2}, rec.Content)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, later, rec.UpdatedAt)

	assert.ErrorIs(t, repo.Update(ctx, "000000000000000000000000", "/c", nil, later), repository.ErrNotFound)

	deleted, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, repo.Len())
}

func TestDocumentMemory_ContentIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Documents()
	content := map[string]any{"x": 1}

	id, err := repo.Insert(ctx, &model.DocumentRecord{Path: "/a", Content: content})
	require.NoError(t, err)
	content["x"] = 2

	rec, err := repo.FindByID(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Content["x"])
}

func TestDocumentMemory_NestedContentIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Documents()
	content := map[string]any{
		"meta": map[string]any{"title": "a"},
		"tags": []any{"x", map[string]any{"k": "v"}},
	}

	id, err := repo.Insert(ctx, &model.DocumentRecord{Path: "/a", Content: content})
	require.NoError(t, err)
	content["meta"].(map[string]any)["title"] = "changed"
	content["tags"].([]any)[0] = "changed"
	content["tags"].([]any)[1].(map[string]any)["k"] = "changed"

	rec, err := repo.FindByID(ctx, id, "")
	require.NoError(t, err)
	want := map[string]any{
		"meta": map[string]any{"title": "a"},
		"tags": []any{"x", map[string]any{"k": "v"}},
	}
	assert.Equal(t, want, rec.Content)

	rec.Content["meta"].(map[string]any)["title"] = "read side"
	again, err := repo.FindByID(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, want, again.Content)

	require.NoError(t, repo.Update(ctx, id, "/a", content, time.Now()))
	content["meta"].(map[string]any)["title"] = "after update"
	updated, err := repo.FindByID(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content["meta"].(map[string]any)["title"])
}

func TestMetadataMemory(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Metadata()

	for _, p := range []string{"/a/b.txt", "/ab.txt", "/x/a", "/a"} {
		require.NoError(t, repo.Insert(ctx, &model.FileMetadata{Path: p, Name: p}))
	}
	assert.Error(t, repo.Insert(ctx, &model.FileMetadata{Path: "/a"}))

	items, err := repo.ListByPathPrefix(ctx, "/a")
	require.NoError(t, err)
	var paths []string
	for _, m := range items {
		paths = append(paths, m.Path)
	}
	assert.Equal(t, []string{"/a/b.txt", "/ab.txt", "/a"}, paths)

	items, err = repo.ListByPathPrefix(ctx, "/zzz")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	require.NoError(t, repo.Upsert(ctx, &model.FileMetadata{Path: "/a", Name: "replaced"}))
	m, err := repo.FindByPath(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, "replaced", m.Name)

	deleted, err := repo.DeleteByPath(ctx, "/ab.txt")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.DeleteByPath(ctx, "/ab.txt")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.FindByPath(ctx, "/ab.txt")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Documents()

	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := repo.Insert(ctx, &model.DocumentRecord{Path: "/p"})
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, 50, repo.Len())
}
