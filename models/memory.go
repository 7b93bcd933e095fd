package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a shared yearbook memory posted by a user.
type Memory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	Likes     int                `bson:"likes" json:"likes"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
