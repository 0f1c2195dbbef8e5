package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"onrise_back_end/internal/handlers"
	checkouthandler "onrise_back_end/internal/handlers/checkout"
	couponhandler "onrise_back_end/internal/handlers/coupon"
	orderhandler "onrise_back_end/internal/handlers/order"
	"onrise_back_end/internal/middleware"
)

// Handlers porte les handlers construits avec leurs dépendances dans main
type Handlers struct {
	Checkout *checkouthandler.Handler
	Coupons  *couponhandler.Handler
	Orders   *orderhandler.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Auth admin
	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimit(), handlers.Login)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/verify", middleware.AdminRequired(), handlers.VerifyToken)
	}

	// Checkout
	checkout := api.Group("/checkout")
	{
		checkout.POST("/session", middleware.CheckoutRateLimit(), h.Checkout.CreateSession)
		checkout.POST("/confirm", h.Checkout.ConfirmOrder)
	}

	// Coupons
	coupons := api.Group("/coupons")
	{
		coupons.POST("/check", h.Coupons.Check)

		admin := coupons.Group("", middleware.AdminRequired())
		{
			admin.GET("", h.Coupons.List)
			admin.GET("/:id", h.Coupons.Get)
			admin.POST("", h.Coupons.Create)
			admin.PUT("/:id", h.Coupons.Update)
			admin.DELETE("/:id", h.Coupons.Delete)
		}
	}

	// Commandes (tout est admin)
	orders := api.Group("/orders", middleware.AdminRequired())
	{
		orders.GET("", h.Orders.List)
		orders.GET("/by-email", h.Orders.ByEmail)
		orders.GET("/:id", h.Orders.Get)
		orders.PATCH("/:id", h.Orders.Patch)
	}

	// Produits
	products := api.Group("/products")
	{
		products.GET("", handlers.GetAllProducts)
		products.GET("/:id", handlers.GetProductByID)
		products.POST("/:id/ratings", handlers.AddProductRating)

		admin := products.Group("", middleware.AdminRequired())
		{
			admin.POST("", handlers.CreateProduct)
			admin.PUT("/:id", handlers.UpdateProduct)
			admin.POST("/:id/images", handlers.AddProductImage)
			admin.DELETE("/:id", handlers.DeleteProduct)
		}
	}

	// Catégories
	categories := api.Group("/categories")
	{
		categories.GET("", handlers.GetAllCategories)

		admin := categories.Group("", middleware.AdminRequired())
		{
			admin.POST("", handlers.CreateCategory)
			admin.PUT("/:slug", handlers.UpdateCategory)
			admin.DELETE("/:slug", handlers.DeleteCategory)
		}
	}

	// Blog
	blog := api.Group("/blog")
	{
		blog.GET("", handlers.GetAllBlogPosts)
		blog.GET("/:id", handlers.GetBlogPostByID)

		admin := blog.Group("", middleware.AdminRequired())
		{
			admin.POST("", handlers.CreateBlogPost)
			admin.PUT("/:id", handlers.UpdateBlogPost)
			admin.DELETE("/:id", handlers.DeleteBlogPost)
		}
	}
}
