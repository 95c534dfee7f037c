package models

type FavouriteProduct struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint    `gorm:"uniqueIndex:idx_user_product;not null" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ProductID uint    `gorm:"uniqueIndex:idx_user_product;not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
}
