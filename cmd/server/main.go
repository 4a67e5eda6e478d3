package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/mkondo/notes-api/internal/config"
	"github.com/mkondo/notes-api/internal/constants"
	"github.com/mkondo/notes-api/internal/database"
	"github.com/mkondo/notes-api/internal/handlers"
	"github.com/mkondo/notes-api/internal/middleware"
	"github.com/mkondo/notes-api/internal/repository"
	"github.com/mkondo/notes-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	tagRepo := repository.NewTagRepository(db)

	authService := services.NewAuthService(userRepo)
	noteService := services.NewNoteService(noteRepo, tagRepo)
	tagService := services.NewTagService(tagRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	noteHandler := handlers.NewNoteHandler(noteService)
	tagHandler := handlers.NewTagHandler(tagService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Notes API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.RequireAuth(), authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PUT("/password", middleware.RequireAuth(), authHandler.ChangePassword)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.DELETE("/account", middleware.RequireAuth(), authHandler.DeleteAccount)
		}

		// Note routes (protected)
		notes := api.Group("/notes")
		notes.Use(middleware.RequireAuth())
		{
			notes.GET("", noteHandler.ListNotes)
			notes.POST("", noteHandler.CreateNote)
			notes.GET("/:id", noteHandler.GetNote)
			notes.PUT("/:id", noteHandler.UpdateNote)
			notes.DELETE("/:id", noteHandler.DeleteNote)
			notes.GET("/:id/versions", noteHandler.ListNoteVersions)
			notes.GET("/:id/versions/:version", noteHandler.GetNoteVersion)
			notes.POST("/:id/tags", noteHandler.AddTagToNote)
			notes.DELETE("/:id/tags/:tagId", noteHandler.RemoveTagFromNote)
		}

		// Tag routes (protected)
		tags := api.Group("/tags")
		tags.Use(middleware.RequireAuth())
		{
			tags.GET("", tagHandler.ListTags)
			tags.POST("", tagHandler.CreateTag)
			tags.PUT("/:id", tagHandler.RenameTag)
			tags.DELETE("/:id", tagHandler.DeleteTag)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
