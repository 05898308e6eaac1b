package service

import (
	"context"
	"fmt"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/config"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SubmissionService 各工段计划/实绩提报。原始记录只追加;
// 堵点解除与裁剪确认是仅有的两处状态字段更新。
type SubmissionService struct {
	repo   *repository.SubmissionRepository
	woRepo *repository.WorkOrderRepository
	rdb    *redis.Client
	cfg    *config.Config
	logger *zap.Logger
}

func NewSubmissionService(
	repo *repository.SubmissionRepository,
	woRepo *repository.WorkOrderRepository,
	rdb *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{repo: repo, woRepo: woRepo, rdb: rdb, cfg: cfg, logger: logger}
}

// SubmissionRequest 各阶段提报的公共字段。
type SubmissionRequest struct {
	ProductionDate string `json:"production_date" binding:"required"` // 2006-01-02
	LineID         string `json:"line_id" binding:"required"`
	WorkOrderID    string `json:"work_order_id" binding:"required"`
}

func (req SubmissionRequest) parse() (time.Time, error) {
	d, err := time.Parse("2006-01-02", req.ProductionDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid production_date %q: %w", req.ProductionDate, err)
	}
	return d, nil
}

func (s *SubmissionService) core(req SubmissionRequest, userID string) (entity.SubmissionCore, error) {
	date, err := req.parse()
	if err != nil {
		return entity.SubmissionCore{}, err
	}
	now := time.Now()
	return entity.SubmissionCore{
		ID:             uuid.New().String(),
		ProductionDate: date,
		LineID:         req.LineID,
		WorkOrderID:    req.WorkOrderID,
		SubmittedAt:    &now,
		SubmittedBy:    userID,
	}, nil
}

// lateFlags 计划提报晚于当天截点即标记迟报。
func (s *SubmissionService) lateFlags(core entity.SubmissionCore) entity.TargetFlags {
	cutoff := time.Date(
		core.ProductionDate.Year(), core.ProductionDate.Month(), core.ProductionDate.Day(),
		s.cfg.Tracker.TargetCutoffHour, 0, 0, 0, time.Local,
	)
	late := core.SubmittedAt != nil && core.SubmittedAt.After(cutoff)
	return entity.TargetFlags{IsLate: late}
}

// BlockerRequest 实绩附带的堵点上报。
type BlockerRequest struct {
	HasBlocker  bool   `json:"has_blocker"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Owner       string `json:"owner"`
}

func (req BlockerRequest) fields() entity.BlockerFields {
	return entity.BlockerFields{
		HasBlocker:         req.HasBlocker,
		BlockerDescription: req.Description,
		BlockerImpact:      req.Impact,
		BlockerOwner:       req.Owner,
	}
}

// ==================== 缝制 ====================

type SewingTargetRequest struct {
	SubmissionRequest
	PerHourTarget   float64 `json:"per_hour_target" binding:"gte=0"`
	ManpowerPlanned float64 `json:"manpower_planned" binding:"gte=0"`
	HoursPlanned    float64 `json:"hours_planned" binding:"gte=0"`
}

func (s *SubmissionService) CreateSewingTarget(ctx context.Context, req SewingTargetRequest, userID string) (*entity.SewingTarget, error) {
	core, err := s.core(req.SubmissionRequest, userID)
	if err != nil {
		return nil, err
	}
	t := &entity.SewingTarget{
		SubmissionCore:  core,
		TargetFlags:     s.lateFlags(core),
		PerHourTarget:   req.PerHourTarget,
		ManpowerPlanned: req.ManpowerPlanned,
		HoursPlanned:    req.HoursPlanned,
	}
	if err := s.repo.CreateSewingTarget(t); err != nil {
		return nil, fmt.Errorf("create sewing target: %w", err)
	}
	s.invalidateSummary(ctx, req.WorkOrderID)
	return t, nil
}

type SewingActualRequest struct {
	SubmissionRequest
	GoodToday      float64        `json:"good_today" binding:"gte=0"`
	RejectToday    float64        `json:"reject_today" binding:"gte=0"`
	ReworkToday    float64        `json:"rework_today" binding:"gte=0"`
	HoursActual    float64        `json:"hours_actual" binding:"gte=0"`
	ManpowerActual float64        `json:"manpower_actual" binding:"gte=0"`
	Blocker        BlockerRequest `json:"blocker"`
}

func (s *SubmissionService) CreateSewingActual(ctx context.Context, req SewingActualRequest, userID string) (*entity.SewingActual, error) {
	core, err := s.core(req.SubmissionRequest, userID)
	if err != nil {
		return nil, err
	}
	a := &entity.SewingActual{
		SubmissionCore: core,
		BlockerFields:  req.Blocker.fields(),
		GoodToday:      req.GoodToday,
		RejectToday:    req.RejectToday,
		ReworkToday:    req.ReworkToday,
		HoursActual:    req.HoursActual,
		ManpowerActual: req.ManpowerActual,
	}
	if err := s.repo.CreateSewingActual(a); err != nil {
		return nil, fmt.Errorf("create sewing actual: %w", err)
	}
	s.invalidateSummary(ctx, req.WorkOrderID)
	return a, nil
}

// ==================== 裁剪 ====================

type CuttingTargetRequest struct {
	SubmissionRequest
	LayTarget float64 `json:"lay_target" binding:"gte=0"`
	CutTarget float64 `json:"cut_target" binding:"gte=0"`
}

func (s *SubmissionService) CreateCuttingTarget(ctx context.Context, req CuttingTargetRequest, userID string) (*entity.CuttingTarget, error) {
	core, err := s.core(req.SubmissionRequest, userID)
	if err != nil {
		return nil, err
	}
	t := &entity.CuttingTarget{
		SubmissionCore: core,
		TargetFlags:    s.lateFlags(core),
		LayTarget:      req.LayTarget,
		CutTarget:      req.CutTarget,
	}
	if err := s.repo.CreateCuttingTarget(t); err != nil {
		return nil, fmt.Errorf("create cutting target: %w", err)
	}
	s.invalidateSummary(ctx, req.WorkOrderID)
	return t, nil
}

type CuttingActualRequest struct {
	SubmissionRequest
	LayQty  float64        `json:"lay_qty" binding:"gte=0"`
	CutQty  float64        `json:"cut_qty" binding:"gte=0"`
	Blocker BlockerRequest `json:"blocker"`
}

func (s *SubmissionService) CreateCuttingActual(ctx context.Context, req CuttingActualRequest, userID string) (*entity.CuttingActual, error) {
	core, err := s.core(req.SubmissionRequest, userID)
	if err != nil {
		return nil, err
	}
	a := &entity.CuttingActual{
		SubmissionCore: core,
		BlockerFields:  req.Blocker.fields(),
		LayQty:         req.LayQty,
		CutQty:         req.CutQty,
	}
	if err := s.repo.CreateCuttingActual(a); err != nil {
		return nil, fmt.Errorf("create cutting actual: %w", err)
	}
	s.invalidateSummary(ctx, req.WorkOrderID)
	return a, nil
}

// ==================== 后整 ====================

type FinishingTargetRequest struct {
	SubmissionRequest
	FinishTarget float64 `json:"finish_target" binding:"gte=0"`
	PackTarget   float64 `json:"pack_target" binding:"gte=0"`
}

func (s *SubmissionService) CreateFinishingTarget(ctx context.Context, req FinishingTargetRequest, userID string) (*entity.FinishingTarget, error) {
	core, err := s.core(req.SubmissionRequest, userID)
	if err != nil {
		return nil, err
	}
	t := &entity.FinishingTarget{
		SubmissionCore: core,
		TargetFlags:    s.lateFlags(core),
		FinishTarget:   req.FinishTarget,
		PackTarget:     req.PackTarget,
	}
	if err := s.repo.CreateFinishingTarget(t); err != nil {
		return nil, fmt.Errorf("create finishing target: %w", err)
	}
	s.invalidateSummary(ctx, req.WorkOrderID)
	return t, nil
}

type FinishingActualRequest struct {
	SubmissionRequest
	CartonQty float64        `json:"carton_qty" binding:"gte=0"`
	PolyQty   float64        `json:"poly_qty" binding:"gte=0"`
	IronQty   float64        `json:"iron_qty" binding:"gte=0"`
	Blocker   BlockerRequest `json:"blocker"`
}

func (s *SubmissionService) CreateFinishingActual(ctx context.Context, req FinishingActualRequest, userID string) (*entity.FinishingActual, error) {
	core, err := s.core(req.SubmissionRequest, userID)
	if err != nil {
		return nil, err
	}
	a := &entity.FinishingActual{
		SubmissionCore: core,
		BlockerFields:  req.Blocker.fields(),
		CartonQty:      req.CartonQty,
		PolyQty:        req.PolyQty,
		IronQty:        req.IronQty,
	}
	if err := s.repo.CreateFinishingActual(a); err != nil {
		return nil, fmt.Errorf("create finishing actual: %w", err)
	}
	s.invalidateSummary(ctx, req.WorkOrderID)
	return a, nil
}

// ==================== 状态更新 ====================

// ResolveBlockerRequest 解除堵点。
type ResolveBlockerRequest struct {
	Stage       string `json:"stage" binding:"required,oneof=sewing cutting finishing"`
	WorkOrderID string `json:"work_order_id"`
}

func (s *SubmissionService) ResolveBlocker(ctx context.Context, id string, req ResolveBlockerRequest) error {
	if err := s.repo.ResolveBlocker(engine.Stage(req.Stage), id, time.Now()); err != nil {
		return fmt.Errorf("resolve blocker: %w", err)
	}
	s.logger.Info("blocker resolved",
		zap.String("stage", req.Stage),
		zap.String("submission_id", id),
	)
	if req.WorkOrderID != "" {
		s.invalidateSummary(ctx, req.WorkOrderID)
	}
	return nil
}

// AcknowledgeCutting 缝制主管确认裁剪实绩。
func (s *SubmissionService) AcknowledgeCutting(ctx context.Context, id, userID, workOrderID string) error {
	if err := s.repo.AcknowledgeCutting(id, userID, time.Now()); err != nil {
		return fmt.Errorf("acknowledge cutting actual: %w", err)
	}
	if workOrderID != "" {
		s.invalidateSummary(ctx, workOrderID)
	}
	return nil
}

func (s *SubmissionService) invalidateSummary(ctx context.Context, workOrderID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, summaryCacheKey(workOrderID))
}
