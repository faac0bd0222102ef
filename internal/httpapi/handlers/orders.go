package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/common"
	"github.com/udyamsetu/platform/internal/orders"
	"github.com/udyamsetu/platform/internal/store/rabbitmq"
)

type createOrderReq struct {
	ProductID uint64 `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// CreateOrder accepts a bulk order as queued and hands it to the settlement
// worker over the queue. An Idempotency-Key header makes retries safe: the
// same key returns the original order without enqueueing again.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > 128 {
		common.Fail(c, http.StatusBadRequest, 10030, "idempotency key too long")
		return
	}
	var idempoKeyPtr *string
	if idempoKey != "" {
		idempoKeyPtr = &idempoKey
	}

	order, created, err := h.OrderSvc.Place(c.Request.Context(), uid, req.ProductID, req.Quantity, idempoKeyPtr)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrBadQuantity):
			common.Fail(c, http.StatusBadRequest, 10031, "quantity must be positive")
		case errors.Is(err, orders.ErrUnknownProduct):
			common.Fail(c, http.StatusNotFound, 40403, "product not found")
		default:
			log.Printf("[CreateOrder] place failed uid=%d product=%d err=%v", uid, req.ProductID, err)
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
		return
	}

	if created {
		msg := rabbitmq.OrderMessage{
			OrderID:   order.ID,
			BuyerID:   order.BuyerID,
			ProductID: order.ProductID,
			Quantity:  order.Quantity,
		}
		if err := h.Rabbit.PublishOrder(c.Request.Context(), msg); err != nil {
			log.Printf("[CreateOrder] publish failed uid=%d order=%s err=%v", uid, order.ID, err)
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}

	common.OK(c, gin.H{"order": order})
}

func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	orderID := c.Param("order_id")
	if orderID == "" {
		common.Fail(c, http.StatusBadRequest, 10032, "order_id required")
		return
	}

	o, err := h.OrderSvc.Get(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "order not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if o.BuyerID != uid {
		// hide existence
		common.Fail(c, http.StatusNotFound, 40404, "order not found")
		return
	}

	common.OK(c, gin.H{"order": o})
}
