package orders

import "time"

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
)

// Order is one bulk purchase request. Orders are accepted immediately as
// queued and settled asynchronously by the worker; UnitPrice and Total are
// snapshots taken at processing time so later catalog edits don't change
// what was agreed.
type Order struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID

	BuyerID   uint64 `gorm:"index;not null;index:uniq_order_idempo,unique,priority:1" json:"buyer_id"`
	ProductID uint64 `gorm:"index;not null" json:"product_id"`
	Quantity  int    `gorm:"not null" json:"quantity"`

	UnitPrice int64 `json:"unit_price"`
	Total     int64 `json:"total"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_order_idempo,unique,priority:2" json:"-"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when failed
	Error *string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
