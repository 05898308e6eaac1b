package handler

import (
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Submission *SubmissionHandler
	Dashboard  *DashboardHandler
	WorkOrder  *WorkOrderHandler
	BinCard    *BinCardHandler
	Export     *ExportHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Submission: NewSubmissionHandler(services.Submission),
		Dashboard:  NewDashboardHandler(services.Dashboard),
		WorkOrder:  NewWorkOrderHandler(services.WorkOrder),
		BinCard:    NewBinCardHandler(services.BinCard),
		Export:     NewExportHandler(services.Export),
	}
}
