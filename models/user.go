package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Customer is the buyer profile attached to a user. The user reference is
// cleared, not cascaded, when the account is deleted, so order history
// survives account removal.
type Customer struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint  `gorm:"uniqueIndex" json:"user_id"`
	User      *User  `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	FirstName string `gorm:"size:250" json:"first_name"`
	LastName  string `gorm:"size:255" json:"last_name"`
}
