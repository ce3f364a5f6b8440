package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/handlers"
)

// Deps carries the constructed handlers and collaborators the router wires up.
type Deps struct {
	Auth      *handlers.AuthHandler
	Videos    *handlers.VideoHandler
	Inference *handlers.InferenceHandler
	Verifier  TokenVerifier
	Logger    *zap.Logger
}

// New creates a new router with all routes configured.
func New(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginLogger(deps.Logger))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "GymEasIA API is running"})
	})

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", deps.Auth.Register)
			authRoutes.POST("/login", deps.Auth.Login)
			authRoutes.GET("/me", authRequired(deps.Verifier), deps.Auth.Me)
		}

		videos := api.Group("/videos", authRequired(deps.Verifier))
		{
			videos.POST("/upload", deps.Videos.Upload)
			videos.GET("", deps.Videos.List)
			videos.GET("/:id", deps.Videos.Get)
			videos.DELETE("/:id", deps.Videos.Delete)
			videos.POST("/:id/process", deps.Videos.Process)
		}

		inference := api.Group("/inference", authRequired(deps.Verifier))
		{
			inference.GET("/:videoId", deps.Inference.Get)
		}
	}

	return r
}
