package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.WorkOrderListParams{
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
		Page:    page,
		Size:    size,
	}
	orders, total, err := h.svc.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": orders, "total": total, "page": page, "size": size}})
}

type CreateWorkOrderRequest struct {
	PONumber    string  `json:"po_number" binding:"required"`
	Buyer       string  `json:"buyer"`
	Style       string  `json:"style"`
	Description string  `json:"description"`
	OrderQty    float64 `json:"order_qty" binding:"required,gt=0"`
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	wo := &entity.WorkOrder{
		ID:          uuid.New().String(),
		PONumber:    req.PONumber,
		Buyer:       req.Buyer,
		Style:       req.Style,
		Description: req.Description,
		OrderQty:    req.OrderQty,
		Status:      "open",
	}
	if err := h.svc.Create(wo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.svc.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

// GetSummary GET /work-orders/:id/summary?from=&to=
func (h *WorkOrderHandler) GetSummary(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	summary, err := h.svc.GetSummary(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "work order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": summary})
}

type ConsumeExtrasRequest struct {
	Qty float64 `json:"qty" binding:"required,gt=0"`
}

func (h *WorkOrderHandler) ConsumeExtras(c *gin.Context) {
	var req ConsumeExtrasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	if err := h.svc.ConsumeExtras(c.Request.Context(), c.Param("id"), req.Qty); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

func parseDateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &from},
		{"to", &to},
	} {
		if v := c.Query(q.name); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "invalid " + q.name + ", expected yyyy-mm-dd"})
				return nil, nil, false
			}
			*q.dst = &t
		}
	}
	return from, to, true
}
