package engine

import "strconv"

// Status 合并记录的展示状态。
type Status string

const (
	StatusBlocker      Status = "blocker"
	StatusLate         Status = "late"
	StatusAcknowledged Status = "acknowledged"
	StatusPending      Status = "pending"
	StatusOnTime       Status = "on_time"
)

// DeriveStatus 按优先级决定展示状态, 先命中先生效:
//  1. 实绩带堵点 -> blocker
//  2. 计划迟报 -> late
//  3. 裁剪实绩 -> 已确认/待确认
//  4. 其余 -> on_time
func DeriveStatus(m MergedSubmission) Status {
	if bc, ok := m.Actual.(BlockerCarrier); ok && m.Actual != nil && bc.BlockerFlagged() {
		return StatusBlocker
	}
	if lm, ok := m.Target.(LateMarker); ok && m.Target != nil && lm.LateFlagged() {
		return StatusLate
	}
	if m.Key.Stage == StageCutting && m.Actual != nil {
		if am, ok := m.Actual.(AckMarker); ok && am.IsAcknowledged() {
			return StatusAcknowledged
		}
		return StatusPending
	}
	return StatusOnTime
}

// Direction 差异方向。
type Direction string

const (
	DirectionImprovement Direction = "improvement"
	DirectionShortfall   Direction = "shortfall"
	DirectionNeutral     Direction = "neutral"
)

// Variance 单个指标的计划/实绩差异。
// 任一侧缺失时 Known=false, 与真正的零差异区分展示。
type Variance struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Precision int       `json:"precision"`
	Target    float64   `json:"target"`
	Actual    float64   `json:"actual"`
	Delta     float64   `json:"delta"`
	Known     bool      `json:"known"`
	Direction Direction `json:"direction"`
}

// FormatDelta 按指标定义的精度格式化差异值; 未知差异返回 "-"。
func (v Variance) FormatDelta() string {
	if !v.Known {
		return "-"
	}
	return strconv.FormatFloat(v.Delta, 'f', v.Precision, 64)
}

// DeriveVariances 对计划/实绩两侧同名指标逐个配对, 差异 = 实绩 - 计划。
// 仅出现在一侧的指标也保留在结果里(Known=false), 供前端降级展示。
func DeriveVariances(m MergedSubmission) []Variance {
	targetMetrics := metricsOf(m.Target)
	actualMetrics := metricsOf(m.Actual)
	if len(targetMetrics) == 0 && len(actualMetrics) == 0 {
		return nil
	}

	actualByName := make(map[string]Metric, len(actualMetrics))
	for _, am := range actualMetrics {
		actualByName[am.Name] = am
	}

	seen := make(map[string]bool, len(targetMetrics))
	out := make([]Variance, 0, len(targetMetrics)+len(actualMetrics))

	for _, tm := range targetMetrics {
		seen[tm.Name] = true
		v := Variance{
			Name:      tm.Name,
			Label:     tm.Label,
			Precision: tm.Precision,
			Target:    tm.Value,
			Direction: DirectionNeutral,
		}
		if am, ok := actualByName[tm.Name]; ok {
			v.Actual = am.Value
			v.Delta = am.Value - tm.Value
			v.Known = true
			switch {
			case v.Delta > 0:
				v.Direction = DirectionImprovement
			case v.Delta < 0:
				v.Direction = DirectionShortfall
			}
		}
		out = append(out, v)
	}

	// 只有实绩侧的指标。
	for _, am := range actualMetrics {
		if seen[am.Name] {
			continue
		}
		out = append(out, Variance{
			Name:      am.Name,
			Label:     am.Label,
			Precision: am.Precision,
			Actual:    am.Value,
			Direction: DirectionNeutral,
		})
	}

	return out
}

// Derive 填充合并记录的状态与差异, 返回副本。
func Derive(m MergedSubmission) MergedSubmission {
	m.Status = DeriveStatus(m)
	m.Variances = DeriveVariances(m)
	return m
}

func metricsOf(rec Record) []Metric {
	if rec == nil {
		return nil
	}
	ms, ok := rec.(MetricSource)
	if !ok {
		return nil
	}
	return ms.Metrics()
}
