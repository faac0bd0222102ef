package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &Order{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, price int64, minQty, stock int) *models.Product {
	t.Helper()
	p := models.Product{
		OwnerID:     1,
		Name:        fmt.Sprintf("widget-%d", time.Now().UnixNano()),
		UnitPrice:   price,
		MinOrderQty: minQty,
		Stock:       stock,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &p
}

func TestPlaceAndProcess_Confirms(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	p := seedProduct(t, db, 2500, 10, 100)

	ctx := context.Background()
	o, created, err := svc.Place(ctx, 7, p.ID, 20, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if !created || o.Status != StatusQueued {
		t.Fatalf("expected new queued order, got created=%v status=%s", created, o.Status)
	}

	if err := svc.Process(ctx, o.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s (err=%v)", got.Status, got.Error)
	}
	if got.UnitPrice != 2500 || got.Total != 2500*20 {
		t.Fatalf("wrong price snapshot: unit=%d total=%d", got.UnitPrice, got.Total)
	}

	var prod models.Product
	if err := db.First(&prod, p.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if prod.Stock != 80 {
		t.Fatalf("expected stock 80 after reservation, got %d", prod.Stock)
	}
}

func TestProcess_FailsBelowMinimumQuantity(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	p := seedProduct(t, db, 100, 50, 1000)

	ctx := context.Background()
	o, _, err := svc.Place(ctx, 7, p.ID, 5, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := svc.Process(ctx, o.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := svc.Get(ctx, o.ID)
	if got.Status != StatusFailed || got.Error == nil {
		t.Fatalf("expected failed with reason, got %+v", got)
	}
}

func TestProcess_FailsOnInsufficientStock(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	p := seedProduct(t, db, 100, 1, 3)

	ctx := context.Background()
	o, _, err := svc.Place(ctx, 7, p.ID, 10, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := svc.Process(ctx, o.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := svc.Get(ctx, o.ID)
	if got.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}

	var prod models.Product
	if err := db.First(&prod, p.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if prod.Stock != 3 {
		t.Fatalf("failed order must not touch stock, got %d", prod.Stock)
	}
}

func TestPlace_IdempotencyKeyReturnsExistingOrder(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	p := seedProduct(t, db, 100, 1, 100)

	ctx := context.Background()
	key := fmt.Sprintf("retry-%d", time.Now().UnixNano())

	first, created, err := svc.Place(ctx, 8, p.ID, 2, &key)
	if err != nil || !created {
		t.Fatalf("first place: created=%v err=%v", created, err)
	}

	second, created, err := svc.Place(ctx, 8, p.ID, 2, &key)
	if err != nil {
		t.Fatalf("second place: %v", err)
	}
	if created {
		t.Fatal("second place with same key must not create a new order")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same order back, got %s vs %s", second.ID, first.ID)
	}
}

func TestPlace_RejectsUnknownProductAndBadQuantity(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	ctx := context.Background()
	if _, _, err := svc.Place(ctx, 9, 999999, 1, nil); !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct, got %v", err)
	}
	p := seedProduct(t, db, 100, 1, 10)
	if _, _, err := svc.Place(ctx, 9, p.ID, 0, nil); !errors.Is(err, ErrBadQuantity) {
		t.Fatalf("expected ErrBadQuantity, got %v", err)
	}
}

func TestProcess_RedeliveryOfSettledOrderIsNoOp(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	p := seedProduct(t, db, 100, 1, 10)

	ctx := context.Background()
	o, _, err := svc.Place(ctx, 10, p.ID, 2, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := svc.Process(ctx, o.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	// a redelivered queue message must not reserve stock twice
	if err := svc.Process(ctx, o.ID); err != nil {
		t.Fatalf("reprocess: %v", err)
	}

	var prod models.Product
	if err := db.First(&prod, p.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if prod.Stock != 8 {
		t.Fatalf("redelivery double-reserved stock: %d", prod.Stock)
	}
}
