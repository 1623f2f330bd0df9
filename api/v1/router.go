package v1

import (
	authapi "go_auction/api/v1/auth"
	"go_auction/api/v1/auctions"
	"go_auction/api/v1/categories"
	imagesapi "go_auction/api/v1/images"
	"go_auction/api/v1/members"
	"go_auction/api/v1/middleware"
	"go_auction/internal/audit"
	"go_auction/internal/auction"
	"go_auction/internal/auth"
	"go_auction/internal/category"
	"go_auction/internal/config"
	"go_auction/internal/httpx"
	"go_auction/internal/images"
	"go_auction/internal/member"
	"go_auction/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps carries the services the routes are built on.
type Deps struct {
	Cfg        *config.Config
	Auctions   *auction.Service
	Members    *member.Service
	Images     *images.Service
	Categories *category.Service
	Audit      *audit.Recorder
	Lockout    *auth.Lockout
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, d Deps) {
	authHandler := authapi.NewHandler(d.Members, d.Lockout, d.Cfg)
	auctionsHandler := auctions.NewHandler(d.Auctions, d.Audit)
	membersHandler := members.NewHandler(d.Members, d.Audit)
	imagesHandler := imagesapi.NewHandler(d.Images, d.Cfg.Uploads)
	categoriesHandler := categories.NewHandler(d.Categories)

	// Static assets: uploaded images and the placeholder.
	r.Static("/static", "static")

	// Socket.IO endpoint for the live bid feed.
	if ws.Server != nil {
		r.GET("/socket.io/*any", gin.WrapH(ws.Server))
		r.POST("/socket.io/*any", gin.WrapH(ws.Server))
	}

	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
		}

		v1.GET("/auctions", auctionsHandler.List)
		v1.GET("/auctions/:id", auctionsHandler.Get)
		v1.GET("/items/:id/images", imagesHandler.ListForItem)
		v1.GET("/categories", categoriesHandler.List)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/me", meHandler)

			protected.POST("/auctions", auctionsHandler.Create)
			protected.POST("/auctions/:id/bid", auctionsHandler.Bid)

			protected.POST("/items/:id/images", imagesHandler.Upload)
			protected.POST("/items/:id/images/reorder", imagesHandler.Reorder)
			protected.DELETE("/images/:id", imagesHandler.Delete)

			// Admin routes
			admin := protected.Group("")
			admin.Use(middleware.AdminRequired())
			{
				admin.DELETE("/auctions/:id", auctionsHandler.Delete)
				admin.POST("/auctions/:id/housekeeping", auctionsHandler.Housekeeping)

				admin.GET("/members", membersHandler.List)
				admin.GET("/members/:id", membersHandler.Get)
				admin.POST("/members/:id/confirm", membersHandler.Confirm)
				admin.POST("/members/:id/admin", membersHandler.SetAdmin)
			}
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns current user information
func meHandler(c *gin.Context) {
	uid, _ := c.Get("uid")
	username, _ := c.Get("username")
	isAdmin, _ := c.Get("is_admin")

	httpx.OK(c, gin.H{
		"uid":      uid,
		"username": username,
		"is_admin": isAdmin,
	})
}
