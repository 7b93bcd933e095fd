package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bsrBe/yearBook/models"
)

// MemoryRepository stores shared memories.
type MemoryRepository interface {
	Create(ctx context.Context, memory *models.Memory) error
	FindByID(ctx context.Context, id string) (*models.Memory, error)
	List(ctx context.Context, page, limit int) ([]models.Memory, int64, error)
	IncrementLikes(ctx context.Context, id string) (*models.Memory, error)
}

type mongoMemoryRepository struct {
	col *mongo.Collection
}

// NewMemoryRepository creates a MemoryRepository over the memories collection.
func NewMemoryRepository(db *mongo.Database) MemoryRepository {
	return &mongoMemoryRepository{col: db.Collection("memories")}
}

func (r *mongoMemoryRepository) Create(ctx context.Context, memory *models.Memory) error {
	if memory.ID.IsZero() {
		memory.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	memory.CreatedAt = now
	memory.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, memory); err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (r *mongoMemoryRepository) FindByID(ctx context.Context, id string) (*models.Memory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var memory models.Memory
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&memory); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find memory: %w", err)
	}
	return &memory, nil
}

func (r *mongoMemoryRepository) List(ctx context.Context, page, limit int) ([]models.Memory, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	skip := int64((page - 1) * limit)

	opts := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list memories: %w", err)
	}
	defer cur.Close(ctx)

	var memories []models.Memory
	if err := cur.All(ctx, &memories); err != nil {
		return nil, 0, fmt.Errorf("decode memories: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count memories: %w", err)
	}
	return memories, total, nil
}

func (r *mongoMemoryRepository) IncrementLikes(ctx context.Context, id string) (*models.Memory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"likes": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	var memory models.Memory
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&memory); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("like memory: %w", err)
	}
	return &memory, nil
}
