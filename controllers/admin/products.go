package adminControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/totembo/storefront-api/models"
	"gorm.io/gorm"
)

type ProductInput struct {
	Title       string  `json:"title" binding:"required,max=150"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Quantity    int     `json:"quantity" binding:"gte=0"`
	Description string  `json:"description"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Slug        string  `json:"slug" binding:"required,max=150"`
	Size        string  `json:"size" binding:"max=100"`
	Color       string  `json:"color" binding:"max=50"`
}

type ProductUpdateInput struct {
	Title       *string  `json:"title"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description"`
	CategoryID  *uint    `json:"category_id"`
	Size        *string  `json:"size"`
	Color       *string  `json:"color"`
}

type CategoryInput struct {
	Title    string `json:"title" binding:"required,max=150"`
	Image    string `json:"image"`
	Slug     string `json:"slug" binding:"required,max=150"`
	ParentID *uint  `json:"parent_id"`
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var category models.Category
		if err := db.First(&category, "id = ?", input.CategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not exist"})
			return
		}

		product := models.Product{
			Title:       input.Title,
			Price:       input.Price,
			Quantity:    input.Quantity,
			Description: input.Description,
			CategoryID:  input.CategoryID,
			Slug:        input.Slug,
			Size:        input.Size,
			Color:       input.Color,
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			}
			return
		}

		var input ProductUpdateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Title != nil {
			updates["title"] = *input.Title
		}
		if input.Price != nil {
			if *input.Price < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be non-negative"})
				return
			}
			updates["price"] = *input.Price
		}
		if input.Quantity != nil {
			if *input.Quantity < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be non-negative"})
				return
			}
			updates["quantity"] = *input.Quantity
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.CategoryID != nil {
			updates["category_id"] = *input.CategoryID
		}
		if input.Size != nil {
			updates["size"] = *input.Size
		}
		if input.Color != nil {
			updates["color"] = *input.Color
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}

		if err := db.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:id
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		result := db.Delete(&models.Product{}, id)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// POST /admin/categories
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		category := models.Category{
			Title:    input.Title,
			Image:    input.Image,
			Slug:     input.Slug,
			ParentID: input.ParentID,
		}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}
