package checkoutControllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartControllers "github.com/totembo/storefront-api/controllers/cart"
	"github.com/totembo/storefront-api/models"
	"github.com/totembo/storefront-api/payment"
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
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.ShippingAddress{},
	))
	return db
}

func seedCart(t *testing.T, db *gorm.DB, price float64, stock, adds int) (*models.Customer, *models.Product) {
	t.Helper()

	user := models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	customer := models.Customer{UserID: &user.ID}
	require.NoError(t, db.Create(&customer).Error)

	category := models.Category{Title: "Watches", Slug: "watches"}
	require.NoError(t, db.Create(&category).Error)
	product := models.Product{Title: "Chrono", Price: price, Quantity: stock, CategoryID: category.ID, Slug: "chrono"}
	require.NoError(t, db.Create(&product).Error)

	for i := 0; i < adds; i++ {
		require.NoError(t, cartControllers.AddProduct(db, customer.ID, product.ID))
	}
	return &customer, &product
}

// test router with the user id pre-resolved, standing in for the JWT
// middleware
func testRouter(db *gorm.DB, userID uint, client *payment.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.GET("/checkout", GetCheckout(db))
	r.POST("/checkout", PostCheckout(db))
	r.POST("/payment", CreatePaymentSession(db, client))
	r.POST("/payment/webhook", PaymentWebhook(db))
	return r
}

func userIDOf(t *testing.T, db *gorm.DB, customer *models.Customer) uint {
	t.Helper()
	require.NotNil(t, customer.UserID)
	return *customer.UserID
}

func awaitPayment(t *testing.T, db *gorm.DB, order *models.Order) {
	t.Helper()
	require.NoError(t, db.Model(order).
		Update("status", models.OrderStatusAwaitingPayment).Error)
}

const testWebhookSecret = "whsec_test"

func signedWebhookRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature",
		payment.SignWebhookPayload([]byte(body), testWebhookSecret, time.Now()))
	return req
}

func TestCreatePaymentSessionRedirects(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 19.99, 5, 1)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		w.Write([]byte(`{"id":"cs_1","url":"https://pay.example.com/cs_1"}`))
	}))
	defer gateway.Close()

	client := payment.NewClient("sk_test", gateway.URL, "", "")
	r := testRouter(db, userIDOf(t, db, customer), client)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://pay.example.com/cs_1", w.Header().Get("Location"))

	// session creation moves the order out of the open state
	var order models.Order
	require.NoError(t, db.Where("customer_id = ?", customer.ID).First(&order).Error)
	assert.Equal(t, models.OrderStatusAwaitingPayment, order.Status)
}

func TestCreatePaymentSessionEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 0)

	client := payment.NewClient("sk_test", "http://127.0.0.1:1", "", "")
	r := testRouter(db, userIDOf(t, db, customer), client)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePaymentSessionGatewayDown(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	client := payment.NewClient("sk_test", "http://127.0.0.1:1", "", "")
	r := testRouter(db, userIDOf(t, db, customer), client)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestFulfillOrderEmptiesLinesWithoutRestock(t *testing.T) {
	db := setupTestDB(t)
	customer, product := seedCart(t, db, 10, 5, 2)

	order, err := cartControllers.OpenOrder(db, customer.ID)
	require.NoError(t, err)
	awaitPayment(t, db, order)

	require.NoError(t, FulfillOrder(db, order.Ref))

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, got.Status)

	var lines int64
	require.NoError(t, db.Model(&models.OrderLine{}).
		Where("order_id = ?", order.ID).Count(&lines).Error)
	assert.EqualValues(t, 0, lines)

	// sold units stay deducted
	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 3, gotProduct.Quantity)
}

func TestFulfillOrderReplayIsNoop(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	order, err := cartControllers.OpenOrder(db, customer.ID)
	require.NoError(t, err)
	awaitPayment(t, db, order)

	require.NoError(t, FulfillOrder(db, order.Ref))
	require.NoError(t, FulfillOrder(db, order.Ref))

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
}

func TestFulfillOrderUnknownRef(t *testing.T) {
	db := setupTestDB(t)
	err := FulfillOrder(db, "missing-ref")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFulfillOrderRejectsOpenOrder(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 2)

	order, err := cartControllers.OpenOrder(db, customer.ID)
	require.NoError(t, err)

	// no payment session was ever created for this order
	err = FulfillOrder(db, order.Ref)
	assert.ErrorIs(t, err, models.ErrOrderNotPayable)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusOpen, got.Status)

	var lines int64
	require.NoError(t, db.Model(&models.OrderLine{}).
		Where("order_id = ?", order.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)
}

func TestPaymentWebhook(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	order, err := cartControllers.OpenOrder(db, customer.ID)
	require.NoError(t, err)
	awaitPayment(t, db, order)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	body := fmt.Sprintf(`{"type":"checkout.session.completed","data":{"object":{"client_reference_id":%q}}}`, order.Ref)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedWebhookRequest(body))

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
}

func TestPaymentWebhookRejectsUnsignedCall(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	order, err := cartControllers.OpenOrder(db, customer.ID)
	require.NoError(t, err)
	awaitPayment(t, db, order)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	// a caller holding only the order ref cannot fulfil the order
	body := fmt.Sprintf(`{"type":"checkout.session.completed","data":{"object":{"client_reference_id":%q}}}`, order.Ref)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusAwaitingPayment, got.Status)

	var lines int64
	require.NoError(t, db.Model(&models.OrderLine{}).
		Where("order_id = ?", order.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)
}

func TestPaymentWebhookRejectsForgedSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	order, err := cartControllers.OpenOrder(db, customer.ID)
	require.NoError(t, err)
	awaitPayment(t, db, order)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	body := fmt.Sprintf(`{"type":"checkout.session.completed","data":{"object":{"client_reference_id":%q}}}`, order.Ref)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature",
		payment.SignWebhookPayload([]byte(body), "whsec_attacker", time.Now()))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusAwaitingPayment, got.Status)
}

func TestPaymentWebhookRejectsOrderWithoutSession(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	order, err := cartControllers.OpenOrder(db, customer.ID)
	require.NoError(t, err)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	// correctly signed event, but the order never went through /payment
	body := fmt.Sprintf(`{"type":"checkout.session.completed","data":{"object":{"client_reference_id":%q}}}`, order.Ref)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedWebhookRequest(body))

	assert.Equal(t, http.StatusConflict, w.Code)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusOpen, got.Status)

	var lines int64
	require.NoError(t, db.Model(&models.OrderLine{}).
		Where("order_id = ?", order.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)
}

func TestPaymentWebhookUnconfigured(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedWebhookRequest(`{"type":"checkout.session.completed","data":{"object":{}}}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPaymentWebhookIgnoresOtherEvents(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedWebhookRequest(`{"type":"payment_intent.created","data":{"object":{}}}`))

	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, db.Where("customer_id = ?", customer.ID).First(&order).Error)
	assert.Equal(t, models.OrderStatusOpen, order.Status)
}

func TestPostCheckoutSavesCustomerAndAddress(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	body := `{"first_name":"Ada","last_name":"Lovelace","address":"1 Main St","city":"London","region":"LDN","phone":"+440000"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Customer
	require.NoError(t, db.First(&got, customer.ID).Error)
	assert.Equal(t, "Ada", got.FirstName)

	var address models.ShippingAddress
	require.NoError(t, db.Where("customer_id = ?", customer.ID).First(&address).Error)
	assert.Equal(t, "1 Main St", address.Address)
}

func TestPostCheckoutValidation(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCart(t, db, 10, 5, 1)

	r := testRouter(db, userIDOf(t, db, customer), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"first_name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
