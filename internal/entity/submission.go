package entity

import (
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
)

// SubmissionCore 各工段提报表的公共列。原始提报只追加不修改,
// 唯一例外是实绩上的堵点状态字段(见 BlockerFields)。
type SubmissionCore struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductionDate time.Time  `json:"production_date" gorm:"type:date;not null;index"`
	LineID         string     `json:"line_id" gorm:"size:64;not null;index"`
	WorkOrderID    string     `json:"work_order_id" gorm:"size:64;not null;index"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	SubmittedBy    string     `json:"submitted_by" gorm:"size:64"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (c SubmissionCore) RecordID() string { return c.ID }

func (c SubmissionCore) ProductionDay() string {
	if c.ProductionDate.IsZero() {
		return ""
	}
	return c.ProductionDate.Format("2006-01-02")
}

func (c SubmissionCore) Line() string              { return c.LineID }
func (c SubmissionCore) WorkOrder() string         { return c.WorkOrderID }
func (c SubmissionCore) SubmittedTime() *time.Time { return c.SubmittedAt }

// TargetFlags 计划侧专属标记。
type TargetFlags struct {
	IsLate bool `json:"is_late" gorm:"default:false"`
}

func (f TargetFlags) LateFlagged() bool { return f.IsLate }

// BlockerFields 实绩侧的堵点上报。解除堵点是整个生命周期里
// 唯一允许的就地更新: 置 HasBlocker=false 并记录 ResolvedAt。
type BlockerFields struct {
	HasBlocker         bool       `json:"has_blocker" gorm:"default:false;index"`
	BlockerDescription string     `json:"blocker_description" gorm:"type:text"`
	BlockerImpact      string     `json:"blocker_impact" gorm:"size:255"`
	BlockerOwner       string     `json:"blocker_owner" gorm:"size:64"`
	BlockerResolvedAt  *time.Time `json:"blocker_resolved_at"`
}

func (f BlockerFields) BlockerFlagged() bool { return f.HasBlocker }

func (f BlockerFields) Blocker() *engine.BlockerInfo {
	if f.BlockerDescription == "" && f.BlockerImpact == "" && f.BlockerOwner == "" {
		return nil
	}
	return &engine.BlockerInfo{
		Description: f.BlockerDescription,
		Impact:      f.BlockerImpact,
		Owner:       f.BlockerOwner,
	}
}

// ==================== 缝制 ====================

// SewingTarget 缝制计划 (早上提报)。
type SewingTarget struct {
	SubmissionCore
	TargetFlags
	PerHourTarget   float64 `json:"per_hour_target" gorm:"type:decimal(12,2);default:0"`
	ManpowerPlanned float64 `json:"manpower_planned" gorm:"type:decimal(12,0);default:0"`
	HoursPlanned    float64 `json:"hours_planned" gorm:"type:decimal(12,2);default:0"`
}

func (SewingTarget) TableName() string   { return "llh_sewing_targets" }
func (SewingTarget) Stage() engine.Stage { return engine.StageSewing }
func (SewingTarget) Phase() engine.Phase { return engine.PhaseTarget }

func (t SewingTarget) Metrics() []engine.Metric {
	return []engine.Metric{
		{Name: "per_hour", Label: "Output per hour", Precision: 2, Value: t.PerHourTarget},
		{Name: "manpower", Label: "Manpower", Precision: 0, Value: t.ManpowerPlanned},
	}
}

// SewingActual 缝制实绩 (收班提报)。
type SewingActual struct {
	SubmissionCore
	BlockerFields
	GoodToday      float64 `json:"good_today" gorm:"type:decimal(12,0);default:0"`
	RejectToday    float64 `json:"reject_today" gorm:"type:decimal(12,0);default:0"`
	ReworkToday    float64 `json:"rework_today" gorm:"type:decimal(12,0);default:0"`
	HoursActual    float64 `json:"hours_actual" gorm:"type:decimal(12,2);default:0"`
	ManpowerActual float64 `json:"manpower_actual" gorm:"type:decimal(12,0);default:0"`
}

func (SewingActual) TableName() string   { return "llh_sewing_actuals" }
func (SewingActual) Stage() engine.Stage { return engine.StageSewing }
func (SewingActual) Phase() engine.Phase { return engine.PhaseActual }

func (a SewingActual) PrimaryOutput() float64 { return a.GoodToday }
func (a SewingActual) RejectCount() float64   { return a.RejectToday }
func (a SewingActual) ReworkCount() float64   { return a.ReworkToday }
func (a SewingActual) HoursWorked() float64   { return a.HoursActual }

func (a SewingActual) Metrics() []engine.Metric {
	metrics := []engine.Metric{
		{Name: "manpower", Label: "Manpower", Precision: 0, Value: a.ManpowerActual},
		{Name: "good", Label: "Good output", Precision: 0, Value: a.GoodToday},
		{Name: "reject", Label: "Rejects", Precision: 0, Value: a.RejectToday},
	}
	// 实际时产由实绩推算, 与计划侧 per_hour 配对。
	if a.HoursActual > 0 {
		metrics = append([]engine.Metric{{
			Name:      "per_hour",
			Label:     "Output per hour",
			Precision: 2,
			Value:     a.GoodToday / a.HoursActual,
		}}, metrics...)
	}
	return metrics
}

// ==================== 裁剪 ====================

// CuttingTarget 裁剪计划。
type CuttingTarget struct {
	SubmissionCore
	TargetFlags
	LayTarget float64 `json:"lay_target" gorm:"type:decimal(12,0);default:0"`
	CutTarget float64 `json:"cut_target" gorm:"type:decimal(12,0);default:0"`
}

func (CuttingTarget) TableName() string   { return "llh_cutting_targets" }
func (CuttingTarget) Stage() engine.Stage { return engine.StageCutting }
func (CuttingTarget) Phase() engine.Phase { return engine.PhaseTarget }

func (t CuttingTarget) Metrics() []engine.Metric {
	return []engine.Metric{
		{Name: "lay", Label: "Lay qty", Precision: 0, Value: t.LayTarget},
		{Name: "cut", Label: "Cut qty", Precision: 0, Value: t.CutTarget},
	}
}

// CuttingActual 裁剪实绩, 需缝制主管确认后才算闭环。
type CuttingActual struct {
	SubmissionCore
	BlockerFields
	LayQty         float64    `json:"lay_qty" gorm:"type:decimal(12,0);default:0"`
	CutQty         float64    `json:"cut_qty" gorm:"type:decimal(12,0);default:0"`
	Acknowledged   bool       `json:"acknowledged" gorm:"default:false"`
	AcknowledgedBy string     `json:"acknowledged_by" gorm:"size:64"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
}

func (CuttingActual) TableName() string   { return "llh_cutting_actuals" }
func (CuttingActual) Stage() engine.Stage { return engine.StageCutting }
func (CuttingActual) Phase() engine.Phase { return engine.PhaseActual }

func (a CuttingActual) IsAcknowledged() bool  { return a.Acknowledged }
func (a CuttingActual) PrimaryOutput() float64 { return a.CutQty }

func (a CuttingActual) Metrics() []engine.Metric {
	return []engine.Metric{
		{Name: "lay", Label: "Lay qty", Precision: 0, Value: a.LayQty},
		{Name: "cut", Label: "Cut qty", Precision: 0, Value: a.CutQty},
	}
}

// ==================== 后整 ====================

// FinishingTarget 后整计划。
type FinishingTarget struct {
	SubmissionCore
	TargetFlags
	FinishTarget float64 `json:"finish_target" gorm:"type:decimal(12,0);default:0"`
	PackTarget   float64 `json:"pack_target" gorm:"type:decimal(12,0);default:0"`
}

func (FinishingTarget) TableName() string   { return "llh_finishing_targets" }
func (FinishingTarget) Stage() engine.Stage { return engine.StageFinishing }
func (FinishingTarget) Phase() engine.Phase { return engine.PhaseTarget }

func (t FinishingTarget) Metrics() []engine.Metric {
	return []engine.Metric{
		{Name: "pack", Label: "Packed qty", Precision: 0, Value: t.PackTarget},
		{Name: "finish", Label: "Finished qty", Precision: 0, Value: t.FinishTarget},
	}
}

// FinishingActual 后整实绩。装箱量(CartonQty)是后整产出的唯一口径,
// 装胶袋量只展示不计入产出合计。
type FinishingActual struct {
	SubmissionCore
	BlockerFields
	CartonQty float64 `json:"carton_qty" gorm:"type:decimal(12,0);default:0"`
	PolyQty   float64 `json:"poly_qty" gorm:"type:decimal(12,0);default:0"`
	IronQty   float64 `json:"iron_qty" gorm:"type:decimal(12,0);default:0"`
}

func (FinishingActual) TableName() string   { return "llh_finishing_actuals" }
func (FinishingActual) Stage() engine.Stage { return engine.StageFinishing }
func (FinishingActual) Phase() engine.Phase { return engine.PhaseActual }

func (a FinishingActual) PrimaryOutput() float64 { return a.CartonQty }

func (a FinishingActual) Metrics() []engine.Metric {
	return []engine.Metric{
		{Name: "pack", Label: "Packed qty", Precision: 0, Value: a.CartonQty},
		{Name: "poly", Label: "Poly qty", Precision: 0, Value: a.PolyQty},
		{Name: "iron", Label: "Ironed qty", Precision: 0, Value: a.IronQty},
	}
}
