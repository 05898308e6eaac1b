package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const summaryCacheTTL = 5 * time.Minute

func summaryCacheKey(workOrderID string) string {
	return "wo:summary:" + workOrderID
}

// WorkOrderService 单工单详情: 宽松键配对 + 差异 + 质量汇总。
type WorkOrderService struct {
	woRepo   *repository.WorkOrderRepository
	subRepo  *repository.SubmissionRepository
	lineRepo *repository.LineRepository
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewWorkOrderService(
	woRepo *repository.WorkOrderRepository,
	subRepo *repository.SubmissionRepository,
	lineRepo *repository.LineRepository,
	rdb *redis.Client,
	logger *zap.Logger,
) *WorkOrderService {
	return &WorkOrderService{woRepo: woRepo, subRepo: subRepo, lineRepo: lineRepo, rdb: rdb, logger: logger}
}

func (s *WorkOrderService) Get(id string) (*entity.WorkOrder, error) {
	return s.woRepo.FindByID(id)
}

func (s *WorkOrderService) List(params repository.WorkOrderListParams) ([]entity.WorkOrder, int64, error) {
	return s.woRepo.List(params)
}

func (s *WorkOrderService) Create(wo *entity.WorkOrder) error {
	return s.woRepo.Create(wo)
}

// WorkOrderSummary 工单详情页的完整派生视图。
type WorkOrderSummary struct {
	WorkOrder *entity.WorkOrder     `json:"work_order"`
	Rows      []MergedRow           `json:"rows"`
	Quality   engine.QualitySummary `json:"quality"`
}

// GetSummary 单工单汇总。无日期区间的全量汇总走 redis 缓存,
// 带区间的查询始终现算。
func (s *WorkOrderService) GetSummary(ctx context.Context, id string, from, to *time.Time) (*WorkOrderSummary, error) {
	cacheable := from == nil && to == nil && s.rdb != nil

	if cacheable {
		if data, err := s.rdb.Get(ctx, summaryCacheKey(id)).Bytes(); err == nil {
			var cached WorkOrderSummary
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	summary, err := s.computeSummary(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if data, err := json.Marshal(summary); err == nil {
			s.rdb.Set(ctx, summaryCacheKey(id), data, summaryCacheTTL)
		}
	}
	return summary, nil
}

func (s *WorkOrderService) computeSummary(ctx context.Context, id string, from, to *time.Time) (*WorkOrderSummary, error) {
	wo, err := s.woRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("work order not found: %w", err)
	}

	records, err := s.subRepo.ListByWorkOrder(id, from, to)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	// 详情页用宽松配对: 同线同日的计划/实绩预期成对, 不再按工单分裂。
	merged, warnings, err := engine.Merge(records, engine.MatchLoose)
	if err != nil {
		return nil, fmt.Errorf("merge submissions: %w", err)
	}
	logMatchWarnings(s.logger, warnings)

	lineNames, err := s.lineRepo.NamesByID()
	if err != nil {
		return nil, fmt.Errorf("load line names: %w", err)
	}

	summary := &WorkOrderSummary{
		WorkOrder: wo,
		Rows:      make([]MergedRow, 0, len(merged)),
	}
	derived := make([]engine.MergedSubmission, 0, len(merged))
	for _, m := range merged {
		d := engine.Derive(m)
		derived = append(derived, d)
		summary.Rows = append(summary.Rows, buildRow(d, lineNames))
	}

	summary.Quality = engine.Summarize(derived, engine.SummaryOpts{
		OrderQty:       wo.OrderQty,
		ExtrasConsumed: wo.ExtrasConsumed,
	})
	return summary, nil
}

// ConsumeExtras 消耗额外产出; 可用量不允许透支。
func (s *WorkOrderService) ConsumeExtras(ctx context.Context, id string, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("consume qty must be positive")
	}

	summary, err := s.computeSummary(ctx, id, nil, nil)
	if err != nil {
		return err
	}

	// 上限条件下到更新语句里, 并发消耗也各自原子判定。
	// 产出只增不减, 此处算出的总量偏旧时只会保守拒绝。
	err = s.woRepo.AddExtrasConsumed(id, qty, summary.Quality.ExtrasTotal)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("insufficient extras: requested %.0f, available %.0f",
			qty, summary.Quality.ExtrasAvailable)
	}
	if err != nil {
		return fmt.Errorf("consume extras: %w", err)
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, summaryCacheKey(id))
	}
	return nil
}
