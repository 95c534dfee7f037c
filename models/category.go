package models

type Category struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Image         string     `json:"image"`
	Slug          string     `gorm:"uniqueIndex;not null" json:"slug"`
	ParentID      *uint      `gorm:"index" json:"parent_id"`
	Parent        *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Subcategories []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
	Products      []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}
