package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/common"
	"github.com/udyamsetu/platform/internal/models"
)

type createProductReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unit_price" binding:"required"`
	MinOrderQty int    `json:"min_order_qty"`
	Stock       int    `json:"stock"`
}

func (h *Handler) CreateProduct(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.UnitPrice <= 0 || req.Stock < 0 {
		common.Fail(c, http.StatusBadRequest, 10020, "unit_price must be positive and stock non-negative")
		return
	}
	if req.MinOrderQty <= 0 {
		req.MinOrderQty = 1
	}

	p := models.Product{
		OwnerID:     uid,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		MinOrderQty: req.MinOrderQty,
		Stock:       req.Stock,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to create product")
		return
	}

	common.OK(c, gin.H{"product": p})
}

func (h *Handler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.Query("offset"))
	if offset < 0 {
		offset = 0
	}

	var products []models.Product
	if err := h.DB.Order("id DESC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to list products")
		return
	}

	common.OK(c, gin.H{"products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10021, "invalid product id")
		return
	}

	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "product not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"product": p})
}
