package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reply attached to a memory.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	MemoryID  primitive.ObjectID `bson:"memoryId" json:"memoryId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
