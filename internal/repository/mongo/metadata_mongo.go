package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docmcp/internal/model"
	"docmcp/internal/repository"
)

type metadataRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Path        string             `bson:"path"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	FileType    string             `bson:"fileType"`
	Size        int64              `bson:"size"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func toMetadataRecord(m *model.FileMetadata) metadataRecord {
	return metadataRecord{
		Path:        m.Path,
		Name:        m.Name,
		Description: m.Description,
		FileType:    m.FileType,
		Size:        m.Size,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r metadataRecord) toModel() model.FileMetadata {
	return model.FileMetadata{
		Path:        r.Path,
		Name:        r.Name,
		Description: r.Description,
		FileType:    r.FileType,
		Size:        r.Size,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// MetadataMongo is a MongoDB implementation of repository.MetadataRepository.
type MetadataMongo struct {
	cols Collections
}

// NewMetadataMongo creates a new MetadataMongo repository.
func NewMetadataMongo(cols Collections) *MetadataMongo {
	return &MetadataMongo{cols: cols}
}

var _ repository.MetadataRepository = (*MetadataMongo)(nil)

// PrefixFilter matches paths starting with the literal prefix.
func PrefixFilter(prefix string) bson.M {
	return bson.M{"path": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}
}

// ListByPathPrefix returns records in natural collection order.
func (r *MetadataMongo) ListByPathPrefix(ctx context.Context, prefix string) ([]model.FileMetadata, error) {
	coll, err := r.cols.Metadata()
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, PrefixFilter(prefix))
	if err != nil {
		return nil, fmt.Errorf("find metadata: %w", err)
	}
	var records []metadataRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	items := make([]model.FileMetadata, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.toModel())
	}
	return items, nil
}

// FindByPath returns repository.ErrNotFound when no record exists.
func (r *MetadataMongo) FindByPath(ctx context.Context, path string) (*model.FileMetadata, error) {
	coll, err := r.cols.Metadata()
	if err != nil {
		return nil, err
	}

	var rec metadataRecord
	if err := coll.FindOne(ctx, bson.M{"path": path}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find metadata: %w", err)
	}
	m := rec.toModel()
	return &m, nil
}

// Insert adds a record. The unique index on path rejects duplicates.
func (r *MetadataMongo) Insert(ctx context.Context, meta *model.FileMetadata) error {
	coll, err := r.cols.Metadata()
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, toMetadataRecord(meta)); err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}
	return nil
}

// Upsert replaces the whole record keyed by path. Fields absent from meta are dropped.
func (r *MetadataMongo) Upsert(ctx context.Context, meta *model.FileMetadata) error {
	coll, err := r.cols.Metadata()
	if err != nil {
		return err
	}
	_, err = coll.ReplaceOne(ctx,
		bson.M{"path": meta.Path},
		toMetadataRecord(meta),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

// DeleteByPath removes the record for path and reports whether one existed.
func (r *MetadataMongo) DeleteByPath(ctx context.Context, path string) (bool, error) {
	coll, err := r.cols.Metadata()
	if err != nil {
		return false, err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"path": path})
	if err != nil {
		return false, fmt.Errorf("delete metadata: %w", err)
	}
	return res.DeletedCount > 0, nil
}
