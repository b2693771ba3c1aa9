package routes

import (
	"net/http"

	"github.com/yashrajoria/storefront/controllers"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/navigation"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies is everything the screen endpoints are built from.
type Dependencies struct {
	Auth          services.AuthService
	Products      services.ProductService
	Orders        services.OrderService
	Images        services.ImageService
	Checkout      *services.Checkout
	Sessions      *store.SessionStore
	Cart          *store.CartStore
	Navigator     *navigation.Navigator
	AuthLimiter   *middleware.RateLimiter
	OrderPageSize int
	Logger        *zap.Logger
}

// Register mounts the auth stack, the tab screens and the always-available
// endpoints on r.
func Register(r *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	authController := controllers.NewAuthController(deps.Auth, deps.Sessions, deps.Cart, deps.Navigator, logger)
	productController := controllers.NewProductController(deps.Products, deps.Images, deps.Cart, deps.Navigator, logger)
	cartController := controllers.NewCartController(deps.Cart, deps.Products, deps.Checkout, deps.Navigator, logger)
	orderController := controllers.NewOrderController(deps.Orders, deps.Sessions, deps.Navigator, deps.OrderPageSize, logger)
	navigationController := controllers.NewNavigationController(deps.Navigator)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"session": deps.Sessions.State(),
		})
	})
	r.GET("/navigation", navigationController.State)
	r.POST("/navigation", navigationController.Navigate)

	// Auth stack, reachable only while logged out
	guest := r.Group("/auth")
	guest.Use(middleware.RequireGuest(deps.Sessions))
	if deps.AuthLimiter != nil {
		guest.Use(middleware.RateLimit(deps.AuthLimiter))
	}
	{
		guest.POST("/register", authController.Register)
		guest.POST("/login", authController.Login)
	}

	// Tab screens, reachable only while logged in
	tabs := r.Group("")
	tabs.Use(middleware.RequireSession(deps.Sessions))
	{
		tabs.POST("/auth/logout", authController.Logout)
		tabs.GET("/home", productController.Home)

		tabs.GET("/products", productController.List)
		tabs.GET("/products/:id", productController.Get)

		admin := tabs.Group("/products")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("", productController.Create)
			admin.PUT("/:id", productController.Update)
			admin.DELETE("/:id", productController.Delete)
		}

		tabs.GET("/cart", cartController.GetCart)
		tabs.POST("/cart/items", cartController.AddItem)
		tabs.POST("/cart/items/:id/increase", cartController.Increase)
		tabs.POST("/cart/items/:id/decrease", cartController.Decrease)
		tabs.DELETE("/cart/items/:id", cartController.RemoveItem)
		tabs.DELETE("/cart", cartController.ClearCart)
		tabs.POST("/cart/checkout", cartController.Checkout)

		tabs.GET("/orders", orderController.List)
		tabs.GET("/orders/:id", orderController.Get)
	}
}
