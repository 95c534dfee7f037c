package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/totembo/storefront-api/models"
	"gorm.io/gorm"
)

// CustomerForUser returns the buyer profile for the authenticated user,
// creating an empty one on first cart interaction.
func CustomerForUser(db *gorm.DB, userID uint) (*models.Customer, error) {
	var customer models.Customer
	err := db.Where("user_id = ?", userID).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{UserID: &userID}
	if err := db.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// GET /cart/
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := CustomerForUser(db, c.GetUint("user_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve customer"})
			return
		}

		info, err := GetCartInfo(db, customer.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		c.JSON(http.StatusOK, info)
	}
}

// GET /to_cart/:product_id/:action — action is add, remove or delete.
func ToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		customer, err := CustomerForUser(db, c.GetUint("user_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve customer"})
			return
		}

		switch c.Param("action") {
		case "add":
			err = AddProduct(db, customer.ID, uint(productID))
		case "remove":
			err = RemoveProduct(db, customer.ID, uint(productID))
		case "delete":
			err = DeleteProduct(db, customer.ID, uint(productID))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown cart action"})
			return
		}

		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, models.ErrOutOfStock):
			c.JSON(http.StatusConflict, gin.H{"error": "Product out of stock"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		default:
			info, err := GetCartInfo(db, customer.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
				return
			}
			c.JSON(http.StatusOK, info)
		}
	}
}

// GET /clear_cart/
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := CustomerForUser(db, c.GetUint("user_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve customer"})
			return
		}

		order, err := OpenOrder(db, customer.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		if err := Clear(db, order.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
