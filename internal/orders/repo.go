package orders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) GetOrderByBuyerAndIdempotencyKey(ctx context.Context, buyerID uint64, key string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND idempotency_key = ?", buyerID, key).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrderOrGetExisting tries to create an order, but if (buyer_id,
// idempotency_key) already exists it returns the existing order instead.
func (r *Repo) CreateOrderOrGetExisting(ctx context.Context, o *Order) (*Order, bool, error) {
	if o.IdempotencyKey == nil || *o.IdempotencyKey == "" {
		o.IdempotencyKey = nil
		if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
			return nil, false, err
		}
		return o, true, nil
	}

	err := r.db.WithContext(ctx).Create(o).Error
	if err == nil {
		return o, true, nil
	}

	existing, getErr := r.GetOrderByBuyerAndIdempotencyKey(ctx, o.BuyerID, *o.IdempotencyKey)
	if getErr == nil {
		return existing, false, nil
	}

	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}

func (r *Repo) GetProductByID(ctx context.Context, id uint64) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkOrderProcessing flips queued -> processing. A no-op when the order is
// already past queued, which makes redelivered queue messages harmless.
func (r *Repo) MarkOrderProcessing(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", id, StatusQueued).
		Update("status", StatusProcessing).Error
}

func (r *Repo) MarkOrderConfirmed(ctx context.Context, id string, unitPrice, total int64) error {
	return r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     StatusConfirmed,
			"unit_price": unitPrice,
			"total":      total,
			"error":      nil,
		}).Error
}

func (r *Repo) MarkOrderFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": StatusFailed,
			"error":  errMsg,
		}).Error
}

// ReserveStock decrements product stock iff enough remains. Returns the
// number of rows touched: 0 means insufficient stock.
func (r *Repo) ReserveStock(ctx context.Context, productID uint64, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected, res.Error
}
