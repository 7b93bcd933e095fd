package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Signature styles.
const (
	StyleCasual  = "CASUAL"
	StyleElegant = "ELEGANT"
	StyleBold    = "BOLD"
)

// Signature is a yearbook entry written by one user for another.
// RecipientID is zero for signatures left on the shared page.
type Signature struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message     string             `bson:"message" json:"message"`
	Style       string             `bson:"style" json:"style"`
	AuthorID    primitive.ObjectID `bson:"authorId" json:"authorId"`
	RecipientID primitive.ObjectID `bson:"recipientId,omitempty" json:"recipientId,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidStyle reports whether style is one of the known signature styles.
func ValidStyle(style string) bool {
	switch style {
	case StyleCasual, StyleElegant, StyleBold:
		return true
	}
	return false
}
