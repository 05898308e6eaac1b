package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportService 工单汇总报表导出。表格语法只服务展示,
// 所有数字一律取引擎的派生结果, 导出层自己不做计算。
type ExportService struct {
	woSvc       *WorkOrderService
	binRepo     *repository.BinCardRepository
	minioClient *minio.Client
	bucketName  string
	logger      *zap.Logger
}

func NewExportService(
	woSvc *WorkOrderService,
	binRepo *repository.BinCardRepository,
	minioClient *minio.Client,
	bucketName string,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		woSvc:       woSvc,
		binRepo:     binRepo,
		minioClient: minioClient,
		bucketName:  bucketName,
		logger:      logger,
	}
}

var submissionHeaders = []string{
	"Date", "Stage", "Line", "Status", "Metric", "Target", "Actual", "Variance",
}

// WorkOrderReport 生成单工单的多段式报表并(在配置了 MinIO 时)归档。
func (s *ExportService) WorkOrderReport(ctx context.Context, workOrderID string, from, to *time.Time) (*excelize.File, string, error) {
	summary, err := s.woSvc.GetSummary(ctx, workOrderID, from, to)
	if err != nil {
		return nil, "", err
	}
	wo := summary.WorkOrder

	f := excelize.NewFile()
	sheet := "Report"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	sectionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	})

	// 工单信息
	row := 1
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("PO %s · %s · %s", wo.PONumber, wo.Buyer, wo.Style))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), sectionStyle)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Order qty")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), wo.OrderQty)
	row += 2

	// 提报明细段
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Daily submissions")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), sectionStyle)
	row++
	for i, h := range submissionHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, row)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}
	row++
	for _, r := range summary.Rows {
		if len(r.Variances) == 0 {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Key.ProductionDate)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(r.Key.Stage))
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Key.LineID)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(r.Status))
			row++
			continue
		}
		for _, v := range r.Variances {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Key.ProductionDate)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(r.Key.Stage))
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Key.LineID)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(r.Status))
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), v.Label)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), v.Target)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), v.Actual)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), v.FormatDelta())
			row++
		}
	}
	row++

	// 质量汇总段
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Quality summary")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), sectionStyle)
	row++
	q := summary.Quality
	for _, pair := range [][2]interface{}{
		{"Total output", q.TotalOutput},
		{"Reject rate (%)", q.RejectRate},
		{"Rework rate (%)", q.ReworkRate},
		{"Avg per hour", q.AvgPerHour},
		{"Extras total", q.ExtrasTotal},
		{"Extras available", q.ExtrasAvailable},
	} {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), pair[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pair[1])
		row++
	}
	for _, st := range q.Stages {
		started := "not started"
		if st.HasData {
			started = fmt.Sprintf("%d%%", st.Pct)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Stage %s", st.Stage))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), started)
		row++
	}
	row++

	// 该 PO 名下仓储卡结余段
	cards, _, err := s.binRepo.List(repository.BinCardListParams{Keyword: wo.PONumber, Size: 100})
	if err == nil && len(cards) > 0 {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Bin cards")
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), sectionStyle)
		row++
		for _, card := range cards {
			txs, err := s.binRepo.ListTransactions(card.ID)
			if err != nil {
				continue
			}
			// 结余一律引擎重算, 不读行内快照
			balance := engine.BuildLedger(toLedgerLines(txs)).LatestBalance().String()
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), card.PONumber)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), card.Description)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), balance)
			row++
		}
	}

	colWidths := []float64{12, 10, 10, 12, 18, 10, 10, 10}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("Report_%s_%s.xlsx", wo.PONumber, time.Now().Format("20060102"))
	s.archive(ctx, f, filename)
	return f, filename, nil
}

// archive 把生成的报表归档到 MinIO, 失败只告警不影响下载。
func (s *ExportService) archive(ctx context.Context, f *excelize.File, filename string) {
	if s.minioClient == nil {
		return
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Warn("serialize report for archive", zap.Error(err))
		return
	}

	objectName := fmt.Sprintf("reports/%s/%s_%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], filename)
	_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		s.logger.Warn("archive report to MinIO", zap.String("object", objectName), zap.Error(err))
		return
	}
	s.logger.Info("report archived", zap.String("object", objectName))
}
