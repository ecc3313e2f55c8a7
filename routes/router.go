package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/config"
	"github.com/quillpress/quillpress/controllers"
	"github.com/quillpress/quillpress/middleware"
	"github.com/quillpress/quillpress/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(utils.AccessLog())
	r.Use(utils.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{
			"message": "Blog API is running",
			"endpoints": gin.H{
				"auth":     "/api/auth",
				"posts":    "/api/posts",
				"comments": "/api/comments",
				"users":    "/api/users",
			},
		})
	})

	r.GET("/health", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "database disconnected")
			return
		}
		utils.Success(ctx, gin.H{"status": "healthy", "database": "connected"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	userController := controllers.NewUserController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.GET("/me", middleware.AuthRequired(db), authController.Me)
	authGroup.POST("/logout", middleware.AuthRequired(db), authController.Logout)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/all", middleware.AuthRequired(db), postController.ListAllPosts)
	postsGroup.GET("/:slug", middleware.OptionalAuth(db), postController.GetPost)
	postsGroup.POST("", middleware.AuthRequired(db), postController.CreatePost)
	postsGroup.PUT("/:id", middleware.AuthRequired(db), postController.UpdatePost)
	postsGroup.DELETE("/:id", middleware.AuthRequired(db), postController.DeletePost)

	commentsGroup := api.Group("/comments")
	commentsGroup.GET("", middleware.AuthRequired(db), middleware.AdminRequired(), commentController.ListAllComments)
	commentsGroup.GET("/:postId", commentController.ListComments)
	commentsGroup.POST("", middleware.OptionalAuth(db), commentController.CreateComment)
	commentsGroup.PUT("/:id", middleware.AuthRequired(db), commentController.UpdateComment)
	commentsGroup.DELETE("/:id", middleware.AuthRequired(db), commentController.DeleteComment)

	usersGroup := api.Group("/users")
	usersGroup.Use(middleware.AuthRequired(db))
	usersGroup.GET("", middleware.AdminRequired(), userController.ListUsers)
	usersGroup.GET("/:id", userController.GetUser)
	usersGroup.PUT("/:id", userController.UpdateUser)
	usersGroup.DELETE("/:id", middleware.AdminRequired(), userController.DeleteUser)
	usersGroup.GET("/:id/stats", userController.GetUserStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r
}
