package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bsrBe/yearBook/models"
)

// SignatureRepository stores yearbook signatures.
type SignatureRepository interface {
	Create(ctx context.Context, sig *models.Signature) error
	ListByRecipient(ctx context.Context, recipientID string) ([]models.Signature, error)
}

type mongoSignatureRepository struct {
	col *mongo.Collection
}

// NewSignatureRepository creates a SignatureRepository over the signatures collection.
func NewSignatureRepository(db *mongo.Database) SignatureRepository {
	return &mongoSignatureRepository{col: db.Collection("signatures")}
}

func (r *mongoSignatureRepository) Create(ctx context.Context, sig *models.Signature) error {
	if sig.ID.IsZero() {
		sig.ID = primitive.NewObjectID()
	}
	if sig.Style == "" {
		sig.Style = models.StyleCasual
	}
	sig.CreatedAt = time.Now().UTC()

	if _, err := r.col.InsertOne(ctx, sig); err != nil {
		return fmt.Errorf("insert signature: %w", err)
	}
	return nil
}

func (r *mongoSignatureRepository) ListByRecipient(ctx context.Context, recipientID string) ([]models.Signature, error) {
	oid, err := primitive.ObjectIDFromHex(recipientID)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"recipientId": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	defer cur.Close(ctx)

	sigs := []models.Signature{}
	if err := cur.All(ctx, &sigs); err != nil {
		return nil, fmt.Errorf("decode signatures: %w", err)
	}
	return sigs, nil
}
