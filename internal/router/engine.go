package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nerakcos/storefront-api/pkg/auth"
	"github.com/nerakcos/storefront-api/pkg/cart"
	"github.com/nerakcos/storefront-api/pkg/email"
	"github.com/nerakcos/storefront-api/pkg/mongo"
)

// Deps carries everything the handlers need. Handlers close over their slice
// of it so the router stays free of package-level state.
type Deps struct {
	Store     *mongo.Store
	Carts     *cart.Service
	Tokens    *auth.TokenService
	Notifier  *email.Notifier
	UploadDir string
}

func allowedOrigins() []string {
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins := strings.Split(raw, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}

// NewEngine builds the gin engine with CORS, static uploads and all routes.
// AllowCredentials stays on: the guest session cookie has to survive
// cross-origin requests from the frontend.
func NewEngine(deps Deps) *gin.Engine {
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Static("/static/uploads", deps.UploadDir)
	router.GET("/", Welcome())

	api := router.Group("/api")
	api.Use(OptionalAuth(deps.Tokens))
	{
		api.GET("/health", HealthCheck(deps.Store))

		api.POST("/register", Register(deps.Store))
		api.POST("/login", Login(deps.Store, deps.Tokens))
		api.POST("/reset-password", ResetPassword(deps.Store))
		api.GET("/profile", RequireAuth(), GetProfile(deps.Store))
		api.PUT("/profile", RequireAuth(), UpdateProfile(deps.Store))

		api.GET("/products", GetProducts(deps.Store))
		api.GET("/products/:id", GetProduct(deps.Store))
		api.POST("/products", RequireAuth(), RequireAdmin(), CreateProduct(deps.Store))
		api.PUT("/products/:id", RequireAuth(), RequireAdmin(), UpdateProduct(deps.Store))
		api.DELETE("/products/:id", RequireAuth(), RequireAdmin(), DeleteProduct(deps.Store))

		api.GET("/categories", GetCategories(deps.Store))
		api.POST("/categories", RequireAuth(), RequireAdmin(), CreateCategory(deps.Store))

		api.POST("/orders", CreateOrder(deps.Store))
		api.GET("/orders", RequireAuth(), RequireAdmin(), GetOrders(deps.Store))

		api.POST("/cart", AddToCart(deps.Carts))
		api.GET("/cart", GetCart(deps.Carts))
		api.PUT("/cart/:item_id", UpdateCartItem(deps.Carts))
		api.DELETE("/cart/:item_id", RemoveFromCart(deps.Carts))
		api.POST("/checkout", Checkout(deps.Carts))

		api.POST("/contact", Contact(deps.Store, deps.Notifier))
		api.POST("/collaborate", Collaborate(deps.Store, deps.Notifier))

		api.GET("/blog", GetBlogPosts(deps.Store))
		api.POST("/blog", RequireAuth(), RequireAdmin(), CreateBlogPost(deps.Store))
		api.PUT("/blog/:id", RequireAuth(), RequireAdmin(), UpdateBlogPost(deps.Store))
		api.DELETE("/blog/:id", RequireAuth(), RequireAdmin(), DeleteBlogPost(deps.Store))

		api.POST("/upload", RequireAuth(), RequireAdmin(), UploadImages(deps.UploadDir))
	}

	return router
}
