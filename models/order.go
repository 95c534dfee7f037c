package models

import "time"

type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"             // acts as the customer's cart, lines mutable
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment" // payment session created
	OrderStatusPaid            OrderStatus = "paid"             // provider confirmed payment
	OrderStatusCleared         OrderStatus = "cleared"          // lines emptied, stock reconciled
)

type Order struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Ref        string      `gorm:"uniqueIndex;not null" json:"ref"`
	// the partial unique index is what makes "one open cart per customer"
	// hold under concurrent first interactions
	CustomerID *uint       `gorm:"index:idx_orders_customer;index:idx_orders_open_customer,unique,where:status = 'open'" json:"customer_id"`
	Customer   *Customer   `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
	Status     OrderStatus `gorm:"type:VARCHAR(20);default:'open';index" json:"status"`
	Shipping   bool        `gorm:"default:true" json:"shipping"`
	Lines      []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type OrderLine struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int     `gorm:"default:0" json:"quantity"`
}

// TotalPrice sums quantity * product price over the preloaded lines.
// Zero for an empty cart. Lines must be loaded with their products.
func (o *Order) TotalPrice() float64 {
	var total float64
	for _, line := range o.Lines {
		total += line.TotalPrice()
	}
	return total
}

// TotalQuantity sums line quantities over the preloaded lines.
func (o *Order) TotalQuantity() int {
	var total int
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

func (l *OrderLine) TotalPrice() float64 {
	return l.Product.Price * float64(l.Quantity)
}
