package models

import "time"

type ShippingAddress struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID *uint     `gorm:"index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
	OrderID    *uint     `gorm:"index" json:"order_id"`
	Order      *Order    `gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL" json:"-"`
	Address    string    `gorm:"size:500;not null" json:"address"`
	City       string    `gorm:"size:255;not null" json:"city"`
	Region     string    `gorm:"size:255;not null" json:"region"`
	Phone      string    `gorm:"size:255;not null" json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}
