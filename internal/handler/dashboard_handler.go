package handler

import (
	"net/http"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GetDaily GET /dashboard/daily?date=2006-01-02&stage=sewing
func (h *DashboardHandler) GetDaily(c *gin.Context) {
	dateStr := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "invalid date, expected yyyy-mm-dd"})
		return
	}

	stage := engine.Stage(c.Query("stage"))
	switch stage {
	case "", engine.StageSewing, engine.StageCutting, engine.StageFinishing:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "unknown stage"})
		return
	}

	board, err := h.svc.GetDailyBoard(c.Request.Context(), date, stage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": board})
}
