package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/bsrBe/yearBook/middleware"
	"github.com/bsrBe/yearBook/models"
	"github.com/bsrBe/yearBook/repository"
)

// SignatureController serves yearbook signatures.
type SignatureController struct {
	signatures repository.SignatureRepository
	log        *zap.Logger
}

// NewSignatureController wires a SignatureController.
func NewSignatureController(signatures repository.SignatureRepository, log *zap.Logger) *SignatureController {
	return &SignatureController{signatures: signatures, log: log}
}

// CreateSignatureInput is the request body for signing a yearbook.
type CreateSignatureInput struct {
	Message     string `json:"message" binding:"required"`
	Style       string `json:"style"`
	RecipientID string `json:"recipientId"`
}

// ListByRecipient returns the signatures left for one user.
func (s *SignatureController) ListByRecipient(c *gin.Context) {
	recipientID := c.Query("recipientId")
	if recipientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sigs, err := s.signatures.ListByRecipient(ctx, recipientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch signatures"})
		return
	}

	c.JSON(http.StatusOK, sigs)
}

// Create signs a yearbook page.
func (s *SignatureController) Create(c *gin.Context) {
	var input CreateSignatureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	if input.Style != "" && !models.ValidStyle(input.Style) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature style"})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	sig := &models.Signature{
		Message:  input.Message,
		Style:    input.Style,
		AuthorID: user.ID,
	}
	if input.RecipientID != "" {
		recipientOID, err := primitive.ObjectIDFromHex(input.RecipientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient ID"})
			return
		}
		sig.RecipientID = recipientOID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.signatures.Create(ctx, sig); err != nil {
		s.log.Error("create signature failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create signature"})
		return
	}

	c.JSON(http.StatusCreated, sig)
}
