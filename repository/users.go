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

// UserUpdate carries the profile fields a user may change after
// registration. Nil pointers leave the stored value untouched.
type UserUpdate struct {
	Name            *string
	ProfileImageURL *string
	Department      *string
	GraduationYear  *int
	Quote           *string
	Hobbies         []string
	RememberFor     *string
	Achievements    []string
}

// UserRepository is the credential store plus profile access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)

	SetConfirmationToken(ctx context.Context, id primitive.ObjectID, token string, sentAt time.Time) error
	MarkEmailConfirmed(ctx context.Context, id primitive.ObjectID) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expire time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	ReplacePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateProfile(ctx context.Context, id string, upd UserUpdate) (*models.User, error)
}

type mongoUserRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates a UserRepository over the users collection.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection("users")}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpire": bson.M{"$gt": now},
	})
}

func (r *mongoUserRepository) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	skip := int64((page - 1) * limit)

	opts := options.Find().SetSkip(skip).SetLimit(int64(limit)).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

func (r *mongoUserRepository) SetConfirmationToken(ctx context.Context, id primitive.ObjectID, token string, sentAt time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"confirmationToken":  token,
			"confirmationSentAt": sentAt,
		},
	})
}

func (r *mongoUserRepository) MarkEmailConfirmed(ctx context.Context, id primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"isEmailConfirmed": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"confirmationToken": "", "confirmationSentAt": ""},
	})
}

func (r *mongoUserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expire time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"resetPasswordToken":  digest,
			"resetPasswordExpire": expire,
		},
	})
}

func (r *mongoUserRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
}

func (r *mongoUserRepository) ReplacePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"password_hash": hash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.ProfileImageURL != nil {
		set["profileImageUrl"] = *upd.ProfileImageURL
	}
	if upd.Department != nil {
		set["department"] = *upd.Department
	}
	if upd.GraduationYear != nil {
		set["graduationYear"] = *upd.GraduationYear
	}
	if upd.Quote != nil {
		set["quote"] = *upd.Quote
	}
	if upd.Hobbies != nil {
		set["hobbies"] = upd.Hobbies
	}
	if upd.RememberFor != nil {
		set["rememberFor"] = *upd.RememberFor
	}
	if upd.Achievements != nil {
		set["achievements"] = upd.Achievements
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
