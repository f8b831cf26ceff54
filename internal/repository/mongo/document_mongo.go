package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"docmcp/internal/model"
	"docmcp/internal/repository"
)

// Collections hands out the collection handles. database.MongoGateway satisfies it.
type Collections interface {
	Documents() (*mongo.Collection, error)
	Metadata() (*mongo.Collection, error)
}

type documentRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Path      string             `bson:"path"`
	Content   map[string]any     `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// DocumentMongo is a MongoDB implementation of repository.DocumentRepository.
type DocumentMongo struct {
	cols Collections
}

// NewDocumentMongo creates a new DocumentMongo repository.
func NewDocumentMongo(cols Collections) *DocumentMongo {
	return &DocumentMongo{cols: cols}
}

var _ repository.DocumentRepository = (*DocumentMongo)(nil)

// Insert stores the record under a new ObjectID and returns its hex form.
func (r *DocumentMongo) Insert(ctx context.Context, rec *model.DocumentRecord) (string, error) {
	coll, err := r.cols.Documents()
	if err != nil {
		return "", err
	}

	doc := documentRecord{
		ID:        primitive.NewObjectID(),
		Path:      rec.Path,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if doc.Content == nil {
		doc.Content = map[string]any{}
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return doc.ID.Hex(), nil
}

// FindByID looks the document up by ObjectID and, when pathFilter is set, by path too.
func (r *DocumentMongo) FindByID(ctx context.Context, id, pathFilter string) (*model.DocumentRecord, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.cols.Documents()
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	if pathFilter != "" {
		filter["path"] = pathFilter
	}

	var doc documentRecord
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}

	content := doc.Content
	if content == nil {
		content = map[string]any{}
	}
	return &model.DocumentRecord{
		ID:        doc.ID.Hex(),
		Path:      doc.Path,
		Content:   content,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Update overwrites path, content and updatedAt in a single-document update.
func (r *DocumentMongo) Update(ctx context.Context, id, path string, content map[string]any, updatedAt time.Time) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	coll, err := r.cols.Documents()
	if err != nil {
		return err
	}
	if content == nil {
		content = map[string]any{}
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"path":      path,
		"content":   content,
		"updatedAt": updatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the document and reports whether it existed.
func (r *DocumentMongo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}
	coll, err := r.cols.Documents()
	if err != nil {
		return false, err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return oid, nil
}
