package routes

import (
	"github.com/gin-gonic/gin"
	adminControllers "github.com/totembo/storefront-api/controllers/admin"
	"github.com/totembo/storefront-api/middleware"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires the API key.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		adminGroup.POST("/products", adminControllers.CreateProduct(db))               // POST /admin/products
		adminGroup.PUT("/products/:id", adminControllers.UpdateProduct(db))            // PUT /admin/products/:id
		adminGroup.DELETE("/products/:id", adminControllers.DeleteProduct(db))         // DELETE /admin/products/:id
		adminGroup.GET("/products/export", adminControllers.ExportProductsToExcel(db)) // GET /admin/products/export

		adminGroup.POST("/categories", adminControllers.CreateCategory(db)) // POST /admin/categories
	}
}
