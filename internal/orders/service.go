package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/common"
)

var (
	ErrUnknownProduct = errors.New("orders: product does not exist")
	ErrBadQuantity    = errors.New("orders: quantity must be positive")
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// Place accepts an order as queued. The returned bool reports whether a new
// order was created (false when an idempotency key matched an earlier one);
// only newly created orders should be enqueued.
func (s *Service) Place(ctx context.Context, buyerID, productID uint64, qty int, idempotencyKey *string) (*Order, bool, error) {
	if qty <= 0 {
		return nil, false, ErrBadQuantity
	}
	if _, err := s.repo.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrUnknownProduct
		}
		return nil, false, err
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}

	o := &Order{
		ID:             id,
		BuyerID:        buyerID,
		ProductID:      productID,
		Quantity:       qty,
		IdempotencyKey: idempotencyKey,
		Status:         StatusQueued,
	}
	return s.repo.CreateOrderOrGetExisting(ctx, o)
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// Process settles one queued order: snapshot the price, reserve stock, and
// confirm it, recording the reason if it fails. Called by the queue worker.
func (s *Service) Process(ctx context.Context, orderID string) error {
	if err := s.repo.MarkOrderProcessing(ctx, orderID); err != nil {
		return err
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == StatusConfirmed || o.Status == StatusFailed {
		// already settled (redelivery)
		return nil
	}

	p, err := s.repo.GetProductByID(ctx, o.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.repo.MarkOrderFailed(ctx, orderID, "product no longer exists")
		}
		return err
	}

	if o.Quantity < p.MinOrderQty {
		return s.repo.MarkOrderFailed(ctx, orderID,
			fmt.Sprintf("quantity %d below minimum order of %d", o.Quantity, p.MinOrderQty))
	}

	n, err := s.repo.ReserveStock(ctx, p.ID, o.Quantity)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.repo.MarkOrderFailed(ctx, orderID,
			fmt.Sprintf("insufficient stock for quantity %d", o.Quantity))
	}

	total := p.UnitPrice * int64(o.Quantity)
	return s.repo.MarkOrderConfirmed(ctx, orderID, p.UnitPrice, total)
}
