package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bsrBe/yearBook/config"
	"github.com/bsrBe/yearBook/limiter"
	"github.com/bsrBe/yearBook/middleware"
	"github.com/bsrBe/yearBook/models"
	"github.com/bsrBe/yearBook/repository"
	"github.com/bsrBe/yearBook/utils"
)

// Mailer dispatches outbound notification email.
type Mailer interface {
	Send(to, subject, body string) error
}

// AuthController orchestrates registration, login, email confirmation
// and password recovery against the user store and token helpers.
type AuthController struct {
	users   repository.UserRepository
	mailer  Mailer
	limiter *limiter.Limiter // nil disables throttling
	cfg     *config.Config
	log     *zap.Logger
}

// NewAuthController wires an AuthController.
func NewAuthController(users repository.UserRepository, mailer Mailer, lim *limiter.Limiter, cfg *config.Config, log *zap.Logger) *AuthController {
	return &AuthController{users: users, mailer: mailer, limiter: lim, cfg: cfg, log: log}
}

// RegisterInput is the request body for registration.
type RegisterInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	Role            string `json:"role"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// LoginInput is the request body for login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordInput is the request body for password recovery.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput is the request body for completing a reset.
type ResetPasswordInput struct {
	Password string `json:"password" binding:"required"`
}

// Register creates a new account and logs it in.
func (a *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidatePassword(input.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	profileImage := input.ProfileImageURL
	if profileImage == "" {
		profileImage = models.DefaultProfileImageURL
	}

	user := &models.User{
		Name:            input.Name,
		Email:           input.Email,
		Password:        hash,
		Role:            role,
		ProfileImageURL: profileImage,
	}

	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		a.log.Error("register: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	a.sendTokenResponse(c, user, http.StatusCreated)
}

// Login authenticates a confirmed account and issues a session token.
// Unconfirmed accounts get a fresh confirmation email and a 403.
func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide email and password"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.limiter.Check(ctx, limiter.ScopeLogin, input.Email); err != nil {
		a.rateLimited(c, err)
		return
	}

	user, err := a.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid credentials, user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	if err := utils.CheckPassword(user.Password, input.Password); err != nil {
		if err := a.limiter.Increment(ctx, limiter.ScopeLogin, input.Email); errors.Is(err, limiter.ErrRateLimited) {
			a.rateLimited(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !user.IsEmailConfirmed {
		if err := a.sendConfirmationEmail(ctx, c, user); err != nil {
			a.log.Error("login: confirmation email failed", zap.String("email", user.Email), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation email could not be sent"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "please verify your email, confirmation link sent"})
		return
	}

	if err := a.limiter.Reset(ctx, limiter.ScopeLogin, input.Email); err != nil {
		a.log.Warn("login: limiter reset failed", zap.Error(err))
	}

	a.sendTokenResponse(c, user, http.StatusOK)
}

// Me returns the authenticated user.
func (a *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ConfirmEmail validates a confirmation token and marks the account
// confirmed.
func (a *AuthController) ConfirmEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no token provided"})
		return
	}

	email, err := utils.ParseConfirmationToken(token, a.cfg.EmailVerificationSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token or user not found"})
		return
	}

	if err := a.users.MarkEmailConfirmed(ctx, user.ID); err != nil {
		a.log.Error("confirmEmail: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not confirm email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "email confirmed successfully, you can now log in"})
}

// ForgotPassword generates a reset capability, stores only its digest,
// and mails the raw token. A failed send clears the stored digest so
// no orphaned valid secret remains.
func (a *AuthController) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.limiter.Increment(ctx, limiter.ScopeForgot, input.Email); errors.Is(err, limiter.ErrRateLimited) {
		a.rateLimited(c, err)
		return
	}

	user, err := a.users.FindByEmail(ctx, input.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user with this email not found"})
		return
	}

	raw, digest, err := utils.NewResetToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate reset token"})
		return
	}

	expire := time.Now().UTC().Add(a.cfg.ResetTokenTTL)
	if err := a.users.SetResetToken(ctx, user.ID, digest, expire); err != nil {
		a.log.Error("forgotPassword: store reset token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store reset token"})
		return
	}

	resetURL := requestScheme(c) + "://" + c.Request.Host + "/api/auth/resetPassword/" + raw
	message := "You are receiving this email because you (or someone else) has requested a password reset.\n" +
		"Please make a PUT request to " + resetURL

	if err := a.mailer.Send(user.Email, "Password reset", message); err != nil {
		// no delivered instructions, so revoke the secret
		if clearErr := a.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			a.log.Error("forgotPassword: clear reset token failed", zap.Error(clearErr))
		}
		a.log.Error("forgotPassword: email failed", zap.String("email", user.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "email could not be sent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "email sent successfully"})
}

// ResetPassword consumes a reset capability and replaces the password.
func (a *AuthController) ResetPassword(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no reset token found in request"})
		return
	}

	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password format"})
		return
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := a.users.FindByResetToken(ctx, utils.HashResetToken(token), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token or token has expired"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	// replaces the hash and clears the reset fields in one write
	if err := a.users.ReplacePassword(ctx, user.ID, hash); err != nil {
		a.log.Error("resetPassword: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset password"})
		return
	}
	user.Password = hash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = time.Time{}

	a.sendTokenResponse(c, user, http.StatusOK)
}

// sendTokenResponse issues a session token, sets the session cookie and
// writes the {user, token} body.
func (a *AuthController) sendTokenResponse(c *gin.Context, user *models.User, status int) {
	token, err := utils.GenerateSessionToken(user.ID.Hex(), user.Role, a.cfg.JWTSecret, a.cfg.JWTExpire)
	if err != nil {
		a.log.Error("could not generate session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.CookieName, token, int(a.cfg.CookieExpire.Seconds()), "/", "", a.cfg.Production(), true)

	c.JSON(status, gin.H{"user": user, "token": token})
}

func (a *AuthController) sendConfirmationEmail(ctx context.Context, c *gin.Context, user *models.User) error {
	token, err := utils.GenerateConfirmationToken(user.Email, a.cfg.EmailVerificationSecret)
	if err != nil {
		return err
	}

	if err := a.users.SetConfirmationToken(ctx, user.ID, token, time.Now().UTC()); err != nil {
		return err
	}

	confirmURL := requestScheme(c) + "://" + c.Request.Host + "/api/auth/confirmEmail/" + token
	message := "Click the link to confirm your email: " + confirmURL

	return a.mailer.Send(user.Email, "Email confirmation", message)
}

func (a *AuthController) rateLimited(c *gin.Context, err error) {
	if errors.Is(err, limiter.ErrRateLimited) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	}
	a.log.Warn("limiter unavailable", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "service unavailable"})
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
