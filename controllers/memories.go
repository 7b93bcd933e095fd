package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bsrBe/yearBook/middleware"
	"github.com/bsrBe/yearBook/models"
	"github.com/bsrBe/yearBook/repository"
)

// MemoryController serves the shared memories feed.
type MemoryController struct {
	memories repository.MemoryRepository
	comments repository.CommentRepository
	log      *zap.Logger
}

// NewMemoryController wires a MemoryController.
func NewMemoryController(memories repository.MemoryRepository, comments repository.CommentRepository, log *zap.Logger) *MemoryController {
	return &MemoryController{memories: memories, comments: comments, log: log}
}

// CreateMemoryInput is the request body for posting a memory.
type CreateMemoryInput struct {
	Content string `json:"content" binding:"required"`
}

// List returns a page of memories, newest first.
func (m *MemoryController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	memories, total, err := m.memories.List(ctx, page, limit)
	if err != nil {
		m.log.Error("list memories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch memories"})
		return
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"memories": memories,
		"pagination": gin.H{
			"total": total,
			"pages": pages,
			"page":  page,
			"limit": limit,
		},
	})
}

// Get returns one memory with its comments.
func (m *MemoryController) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	memory, err := m.memories.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "memory not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch memory"})
		return
	}

	comments, err := m.comments.ListByMemory(ctx, memory.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch memory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"memory": memory, "comments": comments})
}

// Create posts a new memory authored by the current user.
func (m *MemoryController) Create(c *gin.Context) {
	var input CreateMemoryInput
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

	memory := &models.Memory{
		Content:  input.Content,
		AuthorID: user.ID,
	}
	if err := m.memories.Create(ctx, memory); err != nil {
		m.log.Error("create memory failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create memory"})
		return
	}

	c.JSON(http.StatusCreated, memory)
}

// Like increments a memory's like counter.
func (m *MemoryController) Like(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	memory, err := m.memories.IncrementLikes(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "memory not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to like memory"})
		return
	}

	c.JSON(http.StatusOK, memory)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
