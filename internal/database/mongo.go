package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"docmcp/internal/config"
)

var mongoConnect = func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts...)
}

// MongoGateway owns the MongoDB client and the two collection handles used by the
// document store. It is constructed once at startup and shared by the repositories.
type MongoGateway struct {
	cfg config.MongoConfig

	mu        sync.RWMutex
	client    *mongo.Client
	documents *mongo.Collection
	metadata  *mongo.Collection
}

// NewMongoGateway returns an unconnected gateway.
func NewMongoGateway(cfg config.MongoConfig) *MongoGateway {
	return &MongoGateway{cfg: cfg}
}

// Connect makes a single attempt to reach the server. On success the collection
// handles stay valid for the life of the process.
func (g *MongoGateway) Connect(ctx context.Context) error {
	if g.cfg.URI == "" {
		return connectionError(errors.New("MONGODB_URI is required"))
	}
	if g.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.ConnectTimeout)
		defer cancel()
	}

	opts := options.Client().
		ApplyURI(g.cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return connectionError(fmt.Errorf("mongo connect: %w", err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return connectionError(fmt.Errorf("mongo ping: %w", err))
	}

	db := client.Database(g.cfg.Database)

	g.mu.Lock()
	g.client = client
	g.documents = db.Collection(g.cfg.DocumentsCollection)
	g.metadata = db.Collection(g.cfg.MetadataCollection)
	g.mu.Unlock()
	return nil
}

// Documents returns the documents collection.
func (g *MongoGateway) Documents() (*mongo.Collection, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.documents == nil {
		return nil, ErrNotConnected
	}
	return g.documents, nil
}

// Metadata returns the file metadata collection.
func (g *MongoGateway) Metadata() (*mongo.Collection, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.metadata == nil {
		return nil, ErrNotConnected
	}
	return g.metadata, nil
}

// Ping checks the server is still reachable.
func (g *MongoGateway) Ping(ctx context.Context) error {
	g.mu.RLock()
	client := g.client
	g.mu.RUnlock()
	if client == nil {
		return ErrNotConnected
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client. It is safe to call on an unconnected gateway.
func (g *MongoGateway) Close(ctx context.Context) error {
	g.mu.Lock()
	client := g.client
	g.client, g.documents, g.metadata = nil, nil, nil
	g.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
