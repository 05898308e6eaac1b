package engine

import (
	"errors"
	"math"
)

// StageProgress 生产管线单工段的完成度。
// HasData 区分 "尚未开工"(无任何实绩) 与 "真实为零"。
type StageProgress struct {
	Stage   Stage   `json:"stage"`
	Qty     float64 `json:"qty"`
	Pct     int     `json:"pct"`
	HasData bool    `json:"has_data"`
}

// QualitySummary 一个范围(单工单/日期区间)内的质量与产出汇总。
// 派生数据, 每次查询重算, 不落库。
type QualitySummary struct {
	TotalOutput     float64         `json:"total_output"`
	TotalReject     float64         `json:"total_reject"`
	TotalRework     float64         `json:"total_rework"`
	RejectRate      float64         `json:"reject_rate"`
	ReworkRate      float64         `json:"rework_rate"`
	ExtrasTotal     float64         `json:"extras_total"`
	ExtrasAvailable float64         `json:"extras_available"`
	AvgPerHour      float64         `json:"avg_per_hour"`
	Stages          []StageProgress `json:"stages"`
}

// SummaryOpts 汇总范围的工单侧参数, 由调用方从工单记录带入。
type SummaryOpts struct {
	OrderQty       float64
	ExtrasConsumed float64
	// OutputStage 决定 totalOutput 取哪个工段的主产出, 缺省为缝制。
	OutputStage Stage
}

// 管线展示顺序固定: 裁剪 -> 缝制 -> 后整。
var pipelineStages = []Stage{StageCutting, StageSewing, StageFinishing}

// Summarize 在一批合并记录上派生质量汇总。
// 所有比率都有零分母保护, 任何输入都不会产出 NaN/Inf。
func Summarize(merged []MergedSubmission, opts SummaryOpts) QualitySummary {
	outputStage := opts.OutputStage
	if outputStage == "" {
		outputStage = StageSewing
	}

	stageQty := make(map[Stage]float64, len(pipelineStages))
	stageSeen := make(map[Stage]bool, len(pipelineStages))

	var summary QualitySummary
	var totalHours float64

	for _, m := range merged {
		if m.Actual == nil {
			continue
		}

		if op, ok := m.Actual.(OutputProvider); ok {
			stageQty[m.Key.Stage] += op.PrimaryOutput()
			stageSeen[m.Key.Stage] = true
			if m.Key.Stage == outputStage {
				summary.TotalOutput += op.PrimaryOutput()
			}
		}
		if qp, ok := m.Actual.(QualityProvider); ok {
			summary.TotalReject += qp.RejectCount()
			summary.TotalRework += qp.ReworkCount()
		}
		if hp, ok := m.Actual.(HoursProvider); ok {
			totalHours += hp.HoursWorked()
		}
	}

	summary.RejectRate = guardedRate(summary.TotalReject, summary.TotalOutput)
	summary.ReworkRate = guardedRate(summary.TotalRework, summary.TotalOutput)
	summary.AvgPerHour = guardedRatio(summary.TotalOutput, totalHours)

	summary.ExtrasTotal = math.Max(summary.TotalOutput-opts.OrderQty, 0)
	summary.ExtrasAvailable = math.Max(summary.ExtrasTotal-opts.ExtrasConsumed, 0)

	for _, stage := range pipelineStages {
		progress := StageProgress{
			Stage:   stage,
			Qty:     stageQty[stage],
			HasData: stageSeen[stage],
		}
		pct := guardedRate(stageQty[stage], opts.OrderQty)
		progress.Pct = int(math.Round(math.Min(pct, 100)))
		summary.Stages = append(summary.Stages, progress)
	}

	return summary
}

// guardedRate 百分比, 分母无效时回落为 0。
func guardedRate(num, den float64) float64 {
	r, err := safeDivide(num, den)
	if err != nil {
		return 0
	}
	return r * 100
}

// guardedRatio 普通比值, 分母无效时回落为 0。
func guardedRatio(num, den float64) float64 {
	r, err := safeDivide(num, den)
	if err != nil {
		return 0
	}
	return r
}

// safeDivide 把零/负分母以及非有限结果统一折算为 ErrDivisionGuard,
// 调用侧据此回落为 0; 哨兵本身不出引擎。
func safeDivide(num, den float64) (float64, error) {
	if den <= 0 {
		return 0, ErrDivisionGuard
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, ErrDivisionGuard
	}
	return r, nil
}

// IsDivisionGuard 供引擎内部测试断言哨兵行为。
func IsDivisionGuard(err error) bool {
	return errors.Is(err, ErrDivisionGuard)
}
