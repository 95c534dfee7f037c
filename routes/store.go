package routes

import (
	"github.com/gin-gonic/gin"
	catalogControllers "github.com/totembo/storefront-api/controllers/catalog"
	checkoutControllers "github.com/totembo/storefront-api/controllers/checkout"
	"gorm.io/gorm"
)

// SetupStoreRoutes registers the public storefront endpoints.
func SetupStoreRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/", catalogControllers.ListCategories(db))                 // GET /
	r.GET("/category/:slug", catalogControllers.CategoryProducts(db)) // GET /category/:slug?sort=&type=
	r.GET("/product/:slug", catalogControllers.ProductDetail(db))     // GET /product/:slug
	r.GET("/search", catalogControllers.SearchProducts(db))           // GET /search?q=

	// provider callback, authenticated by event content not by user token
	r.POST("/payment/webhook", checkoutControllers.PaymentWebhook(db))
}
