package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BinCardHandler struct {
	svc *service.BinCardService
}

func NewBinCardHandler(svc *service.BinCardService) *BinCardHandler {
	return &BinCardHandler{svc: svc}
}

func (h *BinCardHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.BinCardListParams{
		Keyword:        c.Query("keyword"),
		GroupSignature: c.Query("group_signature"),
		Page:           page,
		Size:           size,
	}
	cards, total, err := h.svc.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": cards, "total": total, "page": page, "size": size}})
}

func (h *BinCardHandler) Create(c *gin.Context) {
	var req service.CreateBinCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	card, err := h.svc.CreateCard(req, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": card})
}

// GetLedger GET /bin-cards/:id/ledger
func (h *BinCardHandler) GetLedger(c *gin.Context) {
	view, err := h.svc.GetLedger(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "bin card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": view})
}

func (h *BinCardHandler) AppendTransaction(c *gin.Context) {
	var req service.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	tx, err := h.svc.AppendTransaction(c.Param("id"), req, currentUser(c))
	if err != nil {
		if errors.Is(err, engine.ErrUnknownCard) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": tx})
}

type BatchTransactionRequest struct {
	Transactions []service.TransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// AppendBatch POST /bin-cards/:id/transactions/batch
func (h *BinCardHandler) AppendBatch(c *gin.Context) {
	var req BatchTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	txs, batchID, err := h.svc.AppendBatch(c.Param("id"), req.Transactions, currentUser(c))
	if err != nil {
		if errors.Is(err, engine.ErrUnknownCard) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"batch_id": batchID, "transactions": txs}})
}

// GetGroupRollup GET /bin-card-groups/:signature/rollup
func (h *BinCardHandler) GetGroupRollup(c *gin.Context) {
	rollup, err := h.svc.GetGroupRollup(c.Param("signature"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "bin group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": rollup})
}

// Delete DELETE /bin-cards/:id?cascade=true
// 台账未清且未要求级联时返回 409。
func (h *BinCardHandler) Delete(c *gin.Context) {
	cascade := c.Query("cascade") == "true"
	err := h.svc.DeleteCard(c.Param("id"), cascade)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrDanglingTransactions):
			c.JSON(http.StatusConflict, gin.H{"code": 40901, "message": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "bin card not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}
