package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"docmcp/internal/database"
	"docmcp/internal/model"
	"docmcp/internal/repository"
)

type testCollections struct {
	coll *mongo.Collection
	err  error
}

func (c testCollections) Documents() (*mongo.Collection, error) { return c.coll, c.err }
func (c testCollections) Metadata() (*mongo.Collection, error)  { return c.coll, c.err }

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestDocumentMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	oid := primitive.NewObjectID()

	mt.Run("insert returns generated id", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := repo.Insert(ctx, &model.DocumentRecord{
			Path:      "/docs/a.json",
			Content:   map[string]any{"x": int32(1)},
			CreatedAt: now,
			UpdatedAt: now,
		})

		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(id)
		assert.NoError(mt, err)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "path", Value: "/docs/a.json"},
			{Key: "content", Value: bson.D{{Key: "x", Value: int32(1)}}},
			{Key: "createdAt", Value: now},
			{Key: "updatedAt", Value: now},
		}))

		rec, err := repo.FindByID(ctx, oid.Hex(), "/docs/a.json")

		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), rec.ID)
		assert.Equal(mt, "/docs/a.json", rec.Path)
		assert.Equal(mt, int32(1), rec.Content["x"])
		assert.True(mt, now.Equal(rec.CreatedAt))
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		rec, err := repo.FindByID(ctx, "000000000000000000000000", "")

		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Nil(mt, rec)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{coll: mt.Coll})

		_, err := repo.FindByID(ctx, "xyz", "")
		assert.ErrorIs(mt, err, repository.ErrInvalidID)

		_, err = repo.Delete(ctx, "xyz")
		assert.ErrorIs(mt, err, repository.ErrInvalidID)

		err = repo.Update(ctx, "xyz", "/a", nil, now)
		assert.ErrorIs(mt, err, repository.ErrInvalidID)
	})

	mt.Run("update", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.Update(ctx, oid.Hex(), "/docs/b.json", map[string]any{"y": "z"}, now)
		assert.NoError(mt, err)
	})

	mt.Run("update missing document", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.Update(ctx, oid.Hex(), "/docs/b.json", nil, now)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		deleted, err := repo.Delete(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.True(mt, deleted)

		deleted, err = repo.Delete(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.False(mt, deleted)
	})

	mt.Run("not connected", func(mt *mtest.T) {
		repo := NewDocumentMongo(testCollections{err: database.ErrNotConnected})

		_, err := repo.Insert(ctx, &model.DocumentRecord{})
		assert.ErrorIs(mt, err, database.ErrNotConnected)
	})
}

func TestMetadataMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	metaDoc := func(path, name string) bson.D {
		return bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "path", Value: path},
			{Key: "name", Value: name},
			{Key: "fileType", Value: "application/json"},
			{Key: "size", Value: int64(10)},
			{Key: "createdAt", Value: now},
			{Key: "updatedAt", Value: now},
		}
	}

	mt.Run("list by prefix", func(mt *mtest.T) {
		repo := NewMetadataMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			metaDoc("/docs/a.json", "a.json"),
			metaDoc("/docs/sub/b.json", "b.json"),
		))

		items, err := repo.ListByPathPrefix(ctx, "/docs")

		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, "/docs/a.json", items[0].Path)
		assert.Equal(mt, "b.json", items[1].Name)
		assert.Equal(mt, int64(10), items[1].Size)
		assert.Empty(mt, items[0].Description)
	})

	mt.Run("list by prefix empty", func(mt *mtest.T) {
		repo := NewMetadataMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		items, err := repo.ListByPathPrefix(ctx, "/none")

		require.NoError(mt, err)
		assert.NotNil(mt, items)
		assert.Empty(mt, items)
	})

	mt.Run("find by path", func(mt *mtest.T) {
		repo := NewMetadataMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, metaDoc("/docs/a.json", "a.json")),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch),
		)

		m, err := repo.FindByPath(ctx, "/docs/a.json")
		require.NoError(mt, err)
		assert.Equal(mt, "a.json", m.Name)

		m, err = repo.FindByPath(ctx, "/missing")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Nil(mt, m)
	})

	mt.Run("insert duplicate path", func(mt *mtest.T) {
		repo := NewMetadataMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Insert(ctx, &model.FileMetadata{Path: "/docs/a.json", Name: "a.json"})
		require.Error(mt, err)
		assert.True(mt, mongo.IsDuplicateKeyError(err))
	})

	mt.Run("upsert and delete", func(mt *mtest.T) {
		repo := NewMetadataMongo(testCollections{coll: mt.Coll})
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		err := repo.Upsert(ctx, &model.FileMetadata{Path: "/docs/a.json", Name: "a.json", FileType: "application/json"})
		require.NoError(mt, err)

		deleted, err := repo.DeleteByPath(ctx, "/docs/a.json")
		require.NoError(mt, err)
		assert.True(mt, deleted)
	})
}

func TestPrefixFilter(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "/a", want: "^/a"},
		{prefix: "/docs/v1.0", want: `^/docs/v1\.0`},
		{prefix: "/a+b(c)", want: `^/a\+b\(c\)`},
		{prefix: "", want: "^"},
	}
	for _, tt := range tests {
		got := PrefixFilter(tt.prefix)["path"].(primitive.Regex)
		assert.Equal(t, tt.want, got.Pattern)
	}
}
