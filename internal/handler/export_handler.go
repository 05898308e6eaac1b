package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExportHandler struct {
	svc *service.ExportService
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// WorkOrderReport GET /work-orders/:id/report.xlsx?from=&to=
func (h *ExportHandler) WorkOrderReport(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	f, filename, err := h.svc.WorkOrderReport(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "work order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
