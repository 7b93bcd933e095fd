package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bsrBe/yearBook/repository"
)

// UserController serves yearbook profiles.
type UserController struct {
	users repository.UserRepository
	log   *zap.Logger
}

// NewUserController wires a UserController.
func NewUserController(users repository.UserRepository, log *zap.Logger) *UserController {
	return &UserController{users: users, log: log}
}

// UpdateUserInput carries the editable profile fields. Absent fields
// are left unchanged.
type UpdateUserInput struct {
	Name            *string  `json:"name"`
	ProfileImageURL *string  `json:"profileImageUrl"`
	Department      *string  `json:"department"`
	GraduationYear  *int     `json:"graduationYear"`
	Quote           *string  `json:"quote"`
	Hobbies         []string `json:"hobbies"`
	RememberFor     *string  `json:"rememberFor"`
	Achievements    []string `json:"achievements"`
}

// List returns a page of users.
func (u *UserController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		u.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching users"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// Get returns one user by ID.
func (u *UserController) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := u.users.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update edits a user's profile fields.
func (u *UserController) Update(c *gin.Context) {
	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := u.users.UpdateProfile(ctx, c.Param("id"), repository.UserUpdate{
		Name:            input.Name,
		ProfileImageURL: input.ProfileImageURL,
		Department:      input.Department,
		GraduationYear:  input.GraduationYear,
		Quote:           input.Quote,
		Hobbies:         input.Hobbies,
		RememberFor:     input.RememberFor,
		Achievements:    input.Achievements,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		u.log.Error("update user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error updating user"})
		return
	}

	c.JSON(http.StatusOK, user)
}
