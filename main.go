package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bsrBe/yearBook/config"
	"github.com/bsrBe/yearBook/controllers"
	"github.com/bsrBe/yearBook/limiter"
	"github.com/bsrBe/yearBook/middleware"
	"github.com/bsrBe/yearBook/repository"
	"github.com/bsrBe/yearBook/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	if err := config.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("index creation failed", zap.Error(err))
	}
	logger.Info("connected to MongoDB", zap.String("db", cfg.MongoDB))

	var lim *limiter.Limiter
	redisClient, err := config.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}
	if redisClient != nil {
		lim = limiter.New(redisClient, limiter.DefaultConfig)
		logger.Info("login throttling enabled", zap.String("redis", cfg.RedisAddr))
	}

	mailer := &utils.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		FromName: cfg.FromName,
		FromAddr: cfg.FromEmail,
	}

	users := repository.NewUserRepository(db)
	memories := repository.NewMemoryRepository(db)
	comments := repository.NewCommentRepository(db)
	signatures := repository.NewSignatureRepository(db)

	authCtl := controllers.NewAuthController(users, mailer, lim, cfg, logger)
	memoryCtl := controllers.NewMemoryController(memories, comments, logger)
	commentCtl := controllers.NewCommentController(comments, memories, logger)
	signatureCtl := controllers.NewSignatureController(signatures, logger)
	userCtl := controllers.NewUserController(users, logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Yearbook API",
			"routes":  []string{"/api/auth", "/api/users", "/api/memories", "/api/signatures"},
		})
	})

	protected := middleware.Auth(cfg.JWTSecret, users)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtl.Register)
			auth.POST("/login", authCtl.Login)
			auth.GET("/me", protected, authCtl.Me)
			auth.POST("/forgotPassword", authCtl.ForgotPassword)
			auth.PUT("/resetPassword/:token", authCtl.ResetPassword)
			auth.GET("/confirmEmail/:token", authCtl.ConfirmEmail)
		}

		memoriesGrp := api.Group("/memories")
		{
			memoriesGrp.GET("", memoryCtl.List)
			memoriesGrp.GET("/:id", memoryCtl.Get)
			memoriesGrp.POST("", protected, memoryCtl.Create)
			memoriesGrp.POST("/:id/like", memoryCtl.Like)
			memoriesGrp.POST("/:id/comments", protected, commentCtl.Add)
		}

		api.DELETE("/comments/:id", protected, commentCtl.Delete)

		signaturesGrp := api.Group("/signatures")
		{
			signaturesGrp.GET("", signatureCtl.ListByRecipient)
			signaturesGrp.POST("", protected, signatureCtl.Create)
		}

		usersGrp := api.Group("/users", protected)
		{
			usersGrp.GET("", userCtl.List)
			usersGrp.GET("/:id", userCtl.Get)
			usersGrp.PUT("/:id", userCtl.Update)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("error closing redis", zap.Error(err))
		}
	}

	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("error disconnecting MongoDB", zap.Error(err))
	}

	logger.Info("server exited")
}
