package handler

import (
	"errors"
	"net/http"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

func currentUser(c *gin.Context) string {
	// 上游接入层负责身份, 这里只透传提报人标识。
	if user := c.GetHeader("X-Submitted-By"); user != "" {
		return user
	}
	return "unknown"
}

func (h *SubmissionHandler) CreateSewingTarget(c *gin.Context) {
	var req service.SewingTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	t, err := h.svc.CreateSewingTarget(c.Request.Context(), req, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": t})
}

func (h *SubmissionHandler) CreateSewingActual(c *gin.Context) {
	var req service.SewingActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	a, err := h.svc.CreateSewingActual(c.Request.Context(), req, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": a})
}

func (h *SubmissionHandler) CreateCuttingTarget(c *gin.Context) {
	var req service.CuttingTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	t, err := h.svc.CreateCuttingTarget(c.Request.Context(), req, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": t})
}

func (h *SubmissionHandler) CreateCuttingActual(c *gin.Context) {
	var req service.CuttingActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	a, err := h.svc.CreateCuttingActual(c.Request.Context(), req, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": a})
}

func (h *SubmissionHandler) CreateFinishingTarget(c *gin.Context) {
	var req service.FinishingTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	t, err := h.svc.CreateFinishingTarget(c.Request.Context(), req, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": t})
}

func (h *SubmissionHandler) CreateFinishingActual(c *gin.Context) {
	var req service.FinishingActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	a, err := h.svc.CreateFinishingActual(c.Request.Context(), req, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": a})
}

func (h *SubmissionHandler) ResolveBlocker(c *gin.Context) {
	var req service.ResolveBlockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	err := h.svc.ResolveBlocker(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "blocker not found or already resolved"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

func (h *SubmissionHandler) AcknowledgeCutting(c *gin.Context) {
	workOrderID := c.Query("work_order_id")
	err := h.svc.AcknowledgeCutting(c.Request.Context(), c.Param("id"), currentUser(c), workOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "cutting actual not found or already acknowledged"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}
