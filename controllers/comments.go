package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bsrBe/yearBook/middleware"
	"github.com/bsrBe/yearBook/models"
	"github.com/bsrBe/yearBook/repository"
)

// CommentController serves replies on memories.
type CommentController struct {
	comments repository.CommentRepository
	memories repository.MemoryRepository
	log      *zap.Logger
}

// NewCommentController wires a CommentController.
func NewCommentController(comments repository.CommentRepository, memories repository.MemoryRepository, log *zap.Logger) *CommentController {
	return &CommentController{comments: comments, memories: memories, log: log}
}

// AddCommentInput is the request body for commenting on a memory.
type AddCommentInput struct {
	Content string `json:"content" binding:"required"`
}

// Add attaches a comment to a memory.
func (cc *CommentController) Add(c *gin.Context) {
	var input AddCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	memory, err := cc.memories.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "memory not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add comment"})
		return
	}

	comment := &models.Comment{
		Content:  input.Content,
		AuthorID: user.ID,
		MemoryID: memory.ID,
	}
	if err := cc.comments.Create(ctx, comment); err != nil {
		cc.log.Error("add comment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Delete removes a comment.
func (cc *CommentController) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cc.comments.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}
