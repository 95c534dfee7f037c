package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/totembo/storefront-api/payment"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up the public store,
// auth, user, and admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, payClient *payment.Client) {
	// Public catalog routes (no middleware)
	SetupStoreRoutes(r, db)

	// Auth routes
	SetupAuthRoutes(r, db)

	// User routes (JWT-protected): cart, favourites, reviews, checkout
	SetupUserRoutes(r, db, payClient)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, db)
}
