package catalogControllers

import (
	"errors"
	"math/rand"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/totembo/storefront-api/models"
	"gorm.io/gorm"
)

// sort fields accepted by the category page
var allowedSortFields = map[string]bool{
	"title":      true,
	"price":      true,
	"-price":     true,
	"created_at": true,
	"color":      true,
	"size":       true,
}

// GET / — top-level categories with their subcategories.
func ListCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Preload("Subcategories").Where("parent_id IS NULL").
			Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /category/:slug?sort=&type= — products of the category's
// subcategories. "type" narrows to a single subcategory slug, "sort"
// orders by a whitelisted field.
func CategoryProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := db.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
			}
			return
		}

		var products []models.Product

		if typeSlug := c.Query("type"); typeSlug != "" {
			var sub models.Category
			if err := db.Where("slug = ?", typeSlug).First(&sub).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
				} else {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategory"})
				}
				return
			}
			if err := db.Preload("Images").Where("category_id = ?", sub.ID).
				Find(&products).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"category": category, "products": products})
			return
		}

		query := db.Preload("Images").
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.parent_id = ?", category.ID)

		if sort := c.Query("sort"); sort != "" {
			field := strings.TrimPrefix(sort, "-")
			if !allowedSortFields[sort] && !allowedSortFields[field] {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
				return
			}
			order := field
			if strings.HasPrefix(sort, "-") {
				order += " DESC"
			}
			query = query.Order("products." + order)
		}

		if err := query.Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"category": category, "products": products})
	}
}

// GET /product/:slug — product detail with reviews and up to four random
// related products.
func ProductDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.Preload("Images").Where("slug = ?", c.Param("slug")).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			}
			return
		}

		var reviews []models.Review
		if err := db.Preload("Author").Where("product_id = ?", product.ID).
			Order("created_at DESC").Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		related, err := RelatedProducts(db, product.ID, 4)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch related products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"product": product,
			"reviews": reviews,
			"related": related,
		})
	}
}

// RelatedProducts samples up to n distinct products other than the one
// being viewed. Bounded retries, no replacement.
func RelatedProducts(db *gorm.DB, excludeID uint, n int) ([]models.Product, error) {
	var candidates []models.Product
	if err := db.Preload("Images").Where("id <> ?", excludeID).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	if len(candidates) <= n {
		return candidates, nil
	}

	picked := make([]models.Product, 0, n)
	seen := make(map[uint]bool, n)
	for attempts := 0; len(picked) < n && attempts < n*10; attempts++ {
		p := candidates[rand.Intn(len(candidates))]
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		picked = append(picked, p)
	}
	return picked, nil
}

// GET /search?q= — case-insensitive substring match on product title.
func SearchProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			c.JSON(http.StatusOK, gin.H{"products": []models.Product{}})
			return
		}

		var products []models.Product
		if err := db.Preload("Images").
			Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%").
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
