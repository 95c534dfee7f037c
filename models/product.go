package models

import "time"

// placeholder served when a product has no gallery images
const PlaceholderImageURL = "https://cdn4.iconfinder.com/data/icons/prohibited/100/16-1024.png"

type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Price       float64        `gorm:"not null" json:"price"`
	Quantity    int            `gorm:"default:0" json:"quantity"` // units in stock
	Description string         `gorm:"default:'Description coming soon'" json:"description"`
	CategoryID  uint           `gorm:"index;not null" json:"category_id"`
	Category    Category       `gorm:"foreignKey:CategoryID" json:"-"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Size        string         `json:"size"`
	Color       string         `json:"color"`
	Images      []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	Image     string `gorm:"not null" json:"image"`
}

// FirstPhoto returns the URL of the first gallery image, or a placeholder
// when the product has none.
func (p *Product) FirstPhoto() string {
	if len(p.Images) == 0 {
		return PlaceholderImageURL
	}
	return p.Images[0].Image
}
