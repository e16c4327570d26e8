package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ymgn/stockkeeper/internal/domain/models"
)

// ErrNotFound is returned when a point read matches no document.
var ErrNotFound = errors.New("document not found")

// ErrRevMismatch is returned by CompareAndSet when the stored revision no
// longer matches the caller's copy.
var ErrRevMismatch = errors.New("document revision mismatch")

// Store defines the document operations the ledger is built on: point read,
// full scan, overwrite, conditional overwrite and idempotent delete.
type Store interface {
	Get(ctx context.Context, id string) (models.StockDocument, error)
	GetAll(ctx context.Context) (map[string]models.StockDocument, error)
	Set(ctx context.Context, id string, doc models.StockDocument) error
	CompareAndSet(ctx context.Context, id string, doc models.StockDocument, expectedRev int64) error
	Delete(ctx context.Context, id string) error
}

// StockStore implements Store on a MongoDB collection, one document per
// stock record with the derived id as _id.
type StockStore struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// storedStock pairs the document key with the persisted value for encoding.
type storedStock struct {
	ID                   string `bson:"_id"`
	models.StockDocument `bson:",inline"`
}

// NewStockStore connects to MongoDB and verifies the connection.
func NewStockStore(ctx context.Context, uri string, dbName string) (*StockStore, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &StockStore{
		client:   client,
		dbName:   dbName,
		collName: "stocks",
	}, nil
}

func (s *StockStore) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(s.collName)
}

// Get fetches one document by id.
func (s *StockStore) Get(ctx context.Context, id string) (models.StockDocument, error) {
	var stored storedStock
	err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockDocument{}, ErrNotFound
	}
	if err != nil {
		return models.StockDocument{}, fmt.Errorf("failed to read document %s: %w", id, err)
	}
	return stored.StockDocument, nil
}

// GetAll scans the whole collection and returns documents keyed by id.
func (s *StockStore) GetAll(ctx context.Context) (map[string]models.StockDocument, error) {
	cursor, err := s.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	var stored []storedStock
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	result := make(map[string]models.StockDocument, len(stored))
	for _, doc := range stored {
		result[doc.ID] = doc.StockDocument
	}
	return result, nil
}

// Set upserts a document, overwriting whatever was stored under the id.
func (s *StockStore) Set(ctx context.Context, id string, doc models.StockDocument) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection().ReplaceOne(ctx, bson.M{"_id": id}, storedStock{ID: id, StockDocument: doc}, opts)
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", id, err)
	}
	return nil
}

// CompareAndSet overwrites a document only if its stored revision still
// equals expectedRev. A concurrent writer that got in between leaves the
// filter matching nothing and the caller gets ErrRevMismatch.
func (s *StockStore) CompareAndSet(ctx context.Context, id string, doc models.StockDocument, expectedRev int64) error {
	filter := bson.M{"_id": id, "rev": expectedRev}
	result, err := s.collection().ReplaceOne(ctx, filter, storedStock{ID: id, StockDocument: doc})
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrRevMismatch
	}
	return nil
}

// Delete removes a document. Deleting an absent id is a no-op.
func (s *StockStore) Delete(ctx context.Context, id string) error {
	_, err := s.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *StockStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
