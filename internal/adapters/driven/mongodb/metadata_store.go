package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MetadataStore = (*MetadataStore)(nil)

// documentDoc is the BSON document schema for document metadata.
type documentDoc struct {
	ID            string    `bson:"_id"`
	OwnerID       string    `bson:"owner_id"`
	Filename      string    `bson:"filename"`
	RawPath       string    `bson:"raw_path"`
	ExtractedPath string    `bson:"extracted_path"`
	Status        string    `bson:"status"`
	ErrorDetail   string    `bson:"error_detail"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toDoc(d *domain.Document) documentDoc {
	return documentDoc{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		Filename:      d.Filename,
		RawPath:       d.RawPath,
		ExtractedPath: d.ExtractedPath,
		Status:        string(d.Status),
		ErrorDetail:   d.ErrorDetail,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (d documentDoc) toDomain() *domain.Document {
	return &domain.Document{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		Filename:      d.Filename,
		RawPath:       d.RawPath,
		ExtractedPath: d.ExtractedPath,
		Status:        domain.DocumentStatus(d.Status),
		ErrorDetail:   d.ErrorDetail,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MetadataStore implements driven.MetadataStore backed by a MongoDB collection.
// The caller owns the mongo.Client lifecycle.
type MetadataStore struct {
	collection *mongo.Collection
}

// NewMetadataStore creates a MetadataStore from a *mongo.Collection.
func NewMetadataStore(collection *mongo.Collection) *MetadataStore {
	return &MetadataStore{collection: collection}
}

// EnsureIndexes creates the indexes the store's queries rely on.
// Safe to call on every startup; Mongo treats existing indexes as a no-op.
func (s *MetadataStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}}},
	})
	return err
}

// Create persists a new document record.
func (s *MetadataStore) Create(ctx context.Context, doc *domain.Document) error {
	_, err := s.collection.InsertOne(ctx, toDoc(doc))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Get retrieves a document by ID.
func (s *MetadataStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var doc documentDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListByOwner retrieves an owner's documents, newest first.
func (s *MetadataStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Document, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(int64(limit)).
			SetSkip(int64(offset)),
	)
	if err != nil {
		return nil, err
	}
	return decodeDocuments(ctx, cursor)
}

// SetStatus records a status transition. Writing the same status again is
// allowed; it bumps updated_at, which the stale-document reaper relies on.
func (s *MetadataStore) SetStatus(ctx context.Context, id string, status domain.DocumentStatus, errorDetail string) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":       string(status),
			"error_detail": errorDetail,
			"updated_at":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetExtractedPath records where the rendered extraction artifact lives.
func (s *MetadataStore) SetExtractedPath(ctx context.Context, id string, path string) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"extracted_path": path,
			"updated_at":     time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListStaleProcessing returns documents stuck in processing since before the
// cutoff, oldest first so the longest-stuck are resubmitted first.
func (s *MetadataStore) ListStaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Document, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{
			"status":     string(domain.StatusProcessing),
			"updated_at": bson.M{"$lt": cutoff},
		},
		options.Find().
			SetSort(bson.D{{Key: "updated_at", Value: 1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	return decodeDocuments(ctx, cursor)
}

// Delete removes a document record.
func (s *MetadataStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks if the store is reachable.
func (s *MetadataStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, nil)
}

func decodeDocuments(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Document, error) {
	var docs []documentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	documents := make([]*domain.Document, 0, len(docs))
	for _, doc := range docs {
		documents = append(documents, doc.toDomain())
	}
	return documents, nil
}
