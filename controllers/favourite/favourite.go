package favouriteControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/totembo/storefront-api/models"
	"gorm.io/gorm"
)

// POST /add_favourite/:slug — toggles the product in the user's favourites.
func ToggleFavourite(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var product models.Product
		if err := db.Where("slug = ?", c.Param("slug")).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			}
			return
		}

		var fav models.FavouriteProduct
		err := db.Where("user_id = ? AND product_id = ?", userID, product.ID).
			First(&fav).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fav = models.FavouriteProduct{UserID: userID, ProductID: product.ID}
			if err := db.Create(&fav).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favourite"})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"favourite": true})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favourite"})
		default:
			if err := db.Delete(&fav).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favourite"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"favourite": false})
		}
	}
}

// GET /favourite_products/
func ListFavourites(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var favs []models.FavouriteProduct
		if err := db.Preload("Product.Images").
			Where("user_id = ?", c.GetUint("user_id")).
			Find(&favs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favourites"})
			return
		}

		products := make([]models.Product, 0, len(favs))
		for _, fav := range favs {
			products = append(products, fav.Product)
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
