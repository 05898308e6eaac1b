package service

import (
	"context"
	"fmt"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"go.uber.org/zap"
)

// DashboardService 多工单日看板: 严格键(含工单)合并当日全部提报。
type DashboardService struct {
	subRepo  *repository.SubmissionRepository
	lineRepo *repository.LineRepository
	logger   *zap.Logger
}

func NewDashboardService(
	subRepo *repository.SubmissionRepository,
	lineRepo *repository.LineRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{subRepo: subRepo, lineRepo: lineRepo, logger: logger}
}

// MergedRow 合并记录的对外视图, 线名等展示字段已补齐。
type MergedRow struct {
	Key               engine.GroupKey   `json:"key"`
	DisplayLabel      string            `json:"display_label"`
	Status            engine.Status     `json:"status"`
	Variances         []engine.Variance `json:"variances,omitempty"`
	LatestSubmittedAt *time.Time        `json:"latest_submitted_at,omitempty"`
	Target            interface{}       `json:"target,omitempty"`
	Actual            interface{}       `json:"actual,omitempty"`
}

// DailyBoard 日看板结果。
type DailyBoard struct {
	Date         string               `json:"date"`
	Rows         []MergedRow          `json:"rows"`
	StatusCounts map[engine.Status]int `json:"status_counts"`
}

// GetDailyBoard 取一个生产日的合并看板。stage 为空时覆盖三个工段。
func (s *DashboardService) GetDailyBoard(ctx context.Context, date time.Time, stage engine.Stage) (*DailyBoard, error) {
	records, err := s.subRepo.ListByDate(date, stage)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	merged, warnings, err := engine.Merge(records, engine.MatchStrict)
	if err != nil {
		return nil, fmt.Errorf("merge submissions: %w", err)
	}
	s.logWarnings(warnings)

	lineNames, err := s.lineRepo.NamesByID()
	if err != nil {
		return nil, fmt.Errorf("load line names: %w", err)
	}

	board := &DailyBoard{
		Date:         date.Format("2006-01-02"),
		Rows:         make([]MergedRow, 0, len(merged)),
		StatusCounts: make(map[engine.Status]int),
	}
	for _, m := range merged {
		row := buildRow(engine.Derive(m), lineNames)
		board.StatusCounts[row.Status]++
		board.Rows = append(board.Rows, row)
	}
	return board, nil
}

func (s *DashboardService) logWarnings(warnings []engine.MatchWarning) {
	logMatchWarnings(s.logger, warnings)
}

// logMatchWarnings 键冲突就地恢复后仅告警, 留给运营排查上游数据。
func logMatchWarnings(logger *zap.Logger, warnings []engine.MatchWarning) {
	for _, w := range warnings {
		logger.Warn("ambiguous submission group, kept most recent",
			zap.String("key", w.Key.String()),
			zap.String("kept_id", w.KeptID),
			zap.String("dropped_id", w.DroppedID),
			zap.Error(w.Err),
		)
	}
}

func buildRow(m engine.MergedSubmission, lineNames map[string]string) MergedRow {
	label := m.DisplayLabel
	if name, ok := lineNames[m.Key.LineID]; ok {
		label = fmt.Sprintf("%s · %s", name, m.Key.ProductionDate)
	}
	row := MergedRow{
		Key:               m.Key,
		DisplayLabel:      label,
		Status:            m.Status,
		Variances:         m.Variances,
		LatestSubmittedAt: m.LatestSubmittedAt,
	}
	if m.Target != nil {
		row.Target = m.Target
	}
	if m.Actual != nil {
		row.Actual = m.Actual
	}
	return row
}
