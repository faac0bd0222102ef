package models

import "time"

// Product is a marketplace listing. Prices are stored in paise to avoid
// floating-point money.
type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     uint64    `gorm:"index;not null" json:"owner_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	MinOrderQty int       `gorm:"not null;default:1" json:"min_order_qty"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }
