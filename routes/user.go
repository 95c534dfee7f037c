package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/totembo/storefront-api/controllers/cart"
	checkoutControllers "github.com/totembo/storefront-api/controllers/checkout"
	favouriteControllers "github.com/totembo/storefront-api/controllers/favourite"
	reviewControllers "github.com/totembo/storefront-api/controllers/review"
	"github.com/totembo/storefront-api/middleware"
	"github.com/totembo/storefront-api/payment"
	"gorm.io/gorm"
)

// SetupUserRoutes registers the JWT-protected endpoints: cart mutation,
// favourites, reviews and checkout.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, payClient *payment.Client) {
	userGroup := r.Group("/")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── Shopping Cart ────────────────
		userGroup.GET("/cart", cartControllers.GetCart(db))                       // GET /cart
		userGroup.GET("/to_cart/:product_id/:action", cartControllers.ToCart(db)) // GET /to_cart/:product_id/:action
		userGroup.GET("/clear_cart", cartControllers.ClearCart(db))               // GET /clear_cart

		// ──────────────── Reviews & Favourites ────────────────
		userGroup.POST("/review/:product_id", reviewControllers.CreateReview(db))        // POST /review/:product_id
		userGroup.POST("/add_favourite/:slug", favouriteControllers.ToggleFavourite(db)) // POST /add_favourite/:slug
		userGroup.GET("/favourite_products", favouriteControllers.ListFavourites(db))    // GET /favourite_products

		// ──────────────── Checkout & Payment ────────────────
		userGroup.GET("/checkout", checkoutControllers.GetCheckout(db))                     // GET /checkout
		userGroup.POST("/checkout", checkoutControllers.PostCheckout(db))                   // POST /checkout
		userGroup.POST("/payment", checkoutControllers.CreatePaymentSession(db, payClient)) // POST /payment
	}
}
