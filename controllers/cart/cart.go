package cartControllers

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/totembo/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// generateOrderRef builds a unique reference for a new cart order.
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// OpenOrder returns the customer's single open order, creating it on the
// first cart interaction. Two concurrent first interactions both reach the
// Create; the partial unique index on (customer_id WHERE status='open')
// rejects the loser, who then picks up the winner's order.
func OpenOrder(db *gorm.DB, customerID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("customer_id = ? AND status = ?", customerID, models.OrderStatusOpen).
		First(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	order = models.Order{
		Ref:        generateOrderRef(),
		CustomerID: &customerID,
		Status:     models.OrderStatusOpen,
	}
	if err := db.Create(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Order
			if err := db.Where("customer_id = ? AND status = ?", customerID, models.OrderStatusOpen).
				First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}
	return &order, nil
}

// AddProduct puts one unit of the product into the customer's cart and
// reserves it from stock. Rejected when the product has no stock left.
func AddProduct(db *gorm.DB, customerID, productID uint) error {
	order, err := OpenOrder(db, customerID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		if product.Quantity < 1 {
			return models.ErrOutOfStock
		}

		var line models.OrderLine
		err := tx.Where("order_id = ? AND product_id = ?", order.ID, product.ID).
			First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.OrderLine{OrderID: order.ID, ProductID: product.ID, Quantity: 1}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			line.Quantity++
			if err := tx.Save(&line).Error; err != nil {
				return err
			}
		}

		product.Quantity--
		return tx.Save(&product).Error
	})
}

// RemoveProduct takes one unit of the product out of the cart and returns
// it to stock. A line that reaches zero is deleted, never left behind.
func RemoveProduct(db *gorm.DB, customerID, productID uint) error {
	order, err := OpenOrder(db, customerID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var line models.OrderLine
		if err := tx.Where("order_id = ? AND product_id = ?", order.ID, productID).
			First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		if line.Quantity > 1 {
			line.Quantity--
			if err := tx.Save(&line).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Delete(&line).Error; err != nil {
				return err
			}
		}

		product.Quantity++
		return tx.Save(&product).Error
	})
}

// DeleteProduct drops the product's line entirely and restores its whole
// reserved quantity to stock.
func DeleteProduct(db *gorm.DB, customerID, productID uint) error {
	order, err := OpenOrder(db, customerID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var line models.OrderLine
		if err := tx.Where("order_id = ? AND product_id = ?", order.ID, productID).
			First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		if err := tx.Delete(&line).Error; err != nil {
			return err
		}

		product.Quantity += line.Quantity
		return tx.Save(&product).Error
	})
}

// Clear restocks every line of the order, deletes them, and moves the
// order to the cleared state, all inside one transaction. A missing
// product row aborts the whole clear. The next cart interaction starts a
// fresh open order.
func Clear(db *gorm.DB, orderID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var lines []models.OrderLine
		if err := tx.Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
			return err
		}

		for _, line := range lines {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.ErrNotFound
				}
				return err
			}

			product.Quantity += line.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
			if err := tx.Delete(&line).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", models.OrderStatusCleared).Error
	})
}

// CartInfo is the read view for the cart page and checkout.
type CartInfo struct {
	Order         *models.Order      `json:"order"`
	Lines         []models.OrderLine `json:"lines"`
	TotalPrice    float64            `json:"cart_total_price"`
	TotalQuantity int                `json:"cart_total_quantity"`
}

// GetCartInfo loads the customer's open order with its lines and products
// and the two derived totals. Totals are recomputed on every read.
func GetCartInfo(db *gorm.DB, customerID uint) (*CartInfo, error) {
	order, err := OpenOrder(db, customerID)
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Lines.Product").First(order, order.ID).Error; err != nil {
		return nil, err
	}

	return &CartInfo{
		Order:         order,
		Lines:         order.Lines,
		TotalPrice:    order.TotalPrice(),
		TotalQuantity: order.TotalQuantity(),
	}, nil
}
