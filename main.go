package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v7"
	tollbooth_gin "github.com/didip/tollbooth_gin"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/JakubMikolajczyk/Library/docs"
	"github.com/JakubMikolajczyk/Library/internal/auth"
	"github.com/JakubMikolajczyk/Library/internal/borrow"
	"github.com/JakubMikolajczyk/Library/internal/category"
	"github.com/JakubMikolajczyk/Library/internal/user"
	"github.com/JakubMikolajczyk/Library/internal/utils"
)

// @title           Library REST API
// @version         1.0
// @description     Library-management backend: user profiles, borrows and cookie-based JWT authentication.
//
// @host      localhost:8080
// @BasePath  /api/v1
func main() {
	// load config
	cfg, err := utils.LoadConfig(".env")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// init database
	db, err := utils.InitDatabase(cfg.Database.DSN())
	if err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}
	if err := db.AutoMigrate(
		&user.User{},
		&auth.Token{},
		&borrow.Borrow{},
		&borrow.History{},
		&category.Category{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// init logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// init Gin router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	//
	// SWAGGER (protected by Basic Auth, not JWT)
	//
	swaggerGroup := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
		cfg.Admin.Username: cfg.Admin.Password,
	}))
	swaggerGroup.GET("", ginSwagger.WrapHandler(swaggerFiles.Handler))
	swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	//
	// WIRE UP SERVICES
	//
	accessTTL := time.Duration(cfg.Token.AccessTokenExpiry) * time.Minute
	refreshTTL := time.Duration(cfg.Token.RefreshTokenExpiry) * time.Hour

	userRepo := user.NewUserRepository(db)
	userService := user.NewUserService(userRepo, logger)

	tokenRepo := auth.NewTokenRepository(db)
	sessionService := auth.NewSessionService(
		userRepo,
		tokenRepo,
		logger,
		cfg.Token.AccessTokenSecret,
		accessTTL,
		cfg.Token.RefreshTokenSecret,
		refreshTTL,
	)

	borrowRepo := borrow.NewBorrowRepository(db)
	borrowService := borrow.NewBorrowService(borrowRepo, logger)

	categoryRepo := category.NewCategoryRepository(db)
	categoryService := category.NewCategoryService(categoryRepo, logger)

	api := router.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// credential-guessing protection on the public auth endpoints
	limiter := tollbooth.NewLimiter(5, nil)
	publicAuth := api.Group("/")
	publicAuth.Use(tollbooth_gin.LimitHandler(limiter))

	authGroup := api.Group("/")
	authGroup.Use(
		auth.AuthMiddleware(userService, cfg.Token.AccessTokenSecret, logger),
	)

	staffGroup := api.Group("/")
	staffGroup.Use(
		auth.AuthMiddleware(userService, cfg.Token.AccessTokenSecret, logger),
		auth.RoleMiddleware(logger, user.RoleStaff, user.RoleAdmin),
	)

	auth.NewAuthHandler(publicAuth, authGroup, sessionService, logger, accessTTL, refreshTTL)
	user.NewUserHandler(authGroup, staffGroup, userService, logger)
	borrow.NewBorrowHandler(authGroup, staffGroup, borrowService, logger)
	category.NewCategoryHandler(api, staffGroup, categoryService, logger)

	//
	// START SERVER
	//
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped gracefully")
	}
}
