package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a yearbook account can hold.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// DefaultProfileImageURL is used when registration carries no image.
const DefaultProfileImageURL = "https://res.cloudinary.com/djbxblywz/image/upload/v1709324274/placeholder-user_g3wtx4.jpg"

// User is a yearbook account. The password hash and the credential
// recovery fields never leave the server.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password_hash" json:"-"` // bcrypt hash
	Role             string             `bson:"role" json:"role"`
	ProfileImageURL  string             `bson:"profileImageUrl" json:"profileImageUrl"`
	Department       string             `bson:"department,omitempty" json:"department,omitempty"`
	GraduationYear   int                `bson:"graduationYear,omitempty" json:"graduationYear,omitempty"`
	Quote            string             `bson:"quote,omitempty" json:"quote,omitempty"`
	Hobbies          []string           `bson:"hobbies,omitempty" json:"hobbies,omitempty"`
	RememberFor      string             `bson:"rememberFor,omitempty" json:"rememberFor,omitempty"`
	Achievements     []string           `bson:"achievements,omitempty" json:"achievements,omitempty"`
	IsEmailConfirmed bool               `bson:"isEmailConfirmed" json:"isEmailConfirmed"`

	ConfirmationToken  string    `bson:"confirmationToken,omitempty" json:"-"`
	ConfirmationSentAt time.Time `bson:"confirmationSentAt,omitempty" json:"-"`

	ResetPasswordToken  string    `bson:"resetPasswordToken,omitempty" json:"-"` // sha256 hex digest
	ResetPasswordExpire time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}
