package reviewControllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/totembo/storefront-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Review{},
	))
	return db
}

func TestCreateReview(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	category := models.Category{Title: "Watches", Slug: "watches"}
	require.NoError(t, db.Create(&category).Error)
	product := models.Product{Title: "Chrono", Price: 99, CategoryID: category.ID, Slug: "chrono"}
	require.NoError(t, db.Create(&product).Error)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", user.ID) })
	r.POST("/review/:product_id", CreateReview(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/review/%d", product.ID),
		strings.NewReader(`{"text":"Keeps perfect time."}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var review models.Review
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&review).Error)
	assert.Equal(t, "Keeps perfect time.", review.Text)
	assert.Equal(t, user.ID, review.AuthorID)

	// unknown product
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/review/999",
		strings.NewReader(`{"text":"ghost"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// empty text fails validation
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/review/%d", product.ID),
		strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
