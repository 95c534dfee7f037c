package checkoutControllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	cartControllers "github.com/totembo/storefront-api/controllers/cart"
	"github.com/totembo/storefront-api/models"
	"github.com/totembo/storefront-api/payment"
	"gorm.io/gorm"
)

const (
	paymentCurrency    = "usd"
	paymentDescription = "Totembo storefront order"
)

// POST /payment/ — creates a provider checkout session for the cart total
// and answers 303 See Other with the provider redirect URL. The cart is
// not cleared here; fulfilment is webhook-driven.
func CreatePaymentSession(db *gorm.DB, client *payment.Client) gin.HandlerFunc {
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
		if len(info.Lines) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrEmptyCart.Error()})
			return
		}

		session, err := client.CreateSession(info.Order.Ref, info.TotalPrice, paymentCurrency, paymentDescription)
		switch {
		case errors.Is(err, payment.ErrFractionalAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart total is not representable in cents"})
			return
		case err != nil:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		if err := db.Model(info.Order).
			Update("status", models.OrderStatusAwaitingPayment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}

		c.Redirect(http.StatusSeeOther, session.URL)
	}
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ClientReferenceID string `json:"client_reference_id"`
		} `json:"object"`
	} `json:"data"`
}

// POST /payment/webhook — provider callback. The raw body must carry a
// valid provider signature before anything is acted on; a completed
// session then marks the order paid and empties its lines WITHOUT
// restocking: those units were sold, not abandoned. Replays of the same
// event are no-ops.
func PaymentWebhook(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		if secret == "" {
			log.Println("Webhook rejected: STRIPE_WEBHOOK_SECRET is not set")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook not configured"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read webhook payload"})
			return
		}

		if err := payment.VerifyWebhookSignature(c.GetHeader("Stripe-Signature"), body, secret, time.Now()); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
			return
		}

		var event webhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
			return
		}

		if event.Type != "checkout.session.completed" {
			c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
			return
		}

		ref := event.Data.Object.ClientReferenceID
		if ref == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order reference"})
			return
		}

		if err := FulfillOrder(db, ref); err != nil {
			switch {
			case errors.Is(err, models.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			case errors.Is(err, models.ErrOrderNotPayable):
				c.JSON(http.StatusConflict, gin.H{"error": "Order has no pending payment session"})
			default:
				log.Println("Failed to fulfill order", ref, "error:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fulfill order"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order fulfilled"})
	}
}

// FulfillOrder marks the order paid and deletes its lines. Stock stays
// deducted. Only an order with a pending payment session can be
// fulfilled; already-paid or cleared orders are left untouched, which
// makes webhook replays safe.
func FulfillOrder(db *gorm.DB, ref string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("ref = ?", ref).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		switch order.Status {
		case models.OrderStatusPaid, models.OrderStatusCleared:
			return nil
		case models.OrderStatusAwaitingPayment:
			// fall through to fulfilment
		default:
			return models.ErrOrderNotPayable
		}

		if err := tx.Where("order_id = ?", order.ID).
			Delete(&models.OrderLine{}).Error; err != nil {
			return err
		}

		return tx.Model(&order).Update("status", models.OrderStatusPaid).Error
	})
}
