package checkoutControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cartControllers "github.com/totembo/storefront-api/controllers/cart"
	"github.com/totembo/storefront-api/models"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	FirstName string `json:"first_name" binding:"required,max=250"`
	LastName  string `json:"last_name" binding:"required,max=255"`
	Address   string `json:"address" binding:"required,max=500"`
	City      string `json:"city" binding:"required,max=255"`
	Region    string `json:"region" binding:"required,max=255"`
	Phone     string `json:"phone" binding:"required,max=255"`
}

// GET /checkout/ — cart info plus any saved customer and shipping data,
// used to prefill the checkout form.
func GetCheckout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := cartControllers.CustomerForUser(db, c.GetUint("user_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve customer"})
			return
		}

		info, err := cartControllers.GetCartInfo(db, customer.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		var address models.ShippingAddress
		if err := db.Where("customer_id = ?", customer.ID).
			Order("created_at DESC").First(&address).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shipping address"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"cart":     info,
			"customer": customer,
			"shipping": address,
		})
	}
}

// POST /checkout/ — persists the buyer names and shipping address for the
// open order. Malformed input re-renders as a 400 with field errors.
func PostCheckout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		customer, err := cartControllers.CustomerForUser(db, c.GetUint("user_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve customer"})
			return
		}

		order, err := cartControllers.OpenOrder(db, customer.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		customer.FirstName = input.FirstName
		customer.LastName = input.LastName
		if err := db.Save(customer).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save customer"})
			return
		}

		address := models.ShippingAddress{
			CustomerID: &customer.ID,
			OrderID:    &order.ID,
			Address:    input.Address,
			City:       input.City,
			Region:     input.Region,
			Phone:      input.Phone,
		}
		if err := db.Create(&address).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save shipping address"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"customer": customer, "shipping": address})
	}
}
