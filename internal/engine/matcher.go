package engine

import (
	"fmt"
	"sort"
	"time"
)

// MatchMode 控制分组键里是否包含工单号。
type MatchMode int

const (
	// MatchStrict 工段+日期+线+工单 精确匹配, 用于多工单看板。
	MatchStrict MatchMode = iota
	// MatchLoose 工段+日期+线 宽松配对, 用于单工单详情页,
	// 同一条线当天的计划/实绩预期成对出现。
	MatchLoose
)

// GroupKey 合并记录的复合键。宽松模式下 WorkOrderID 为空。
type GroupKey struct {
	Stage          Stage  `json:"stage"`
	ProductionDate string `json:"production_date"`
	LineID         string `json:"line_id"`
	WorkOrderID    string `json:"work_order_id,omitempty"`
}

func (k GroupKey) String() string {
	if k.WorkOrderID == "" {
		return fmt.Sprintf("%s/%s/%s", k.Stage, k.ProductionDate, k.LineID)
	}
	return fmt.Sprintf("%s/%s/%s/%s", k.Stage, k.ProductionDate, k.LineID, k.WorkOrderID)
}

// MergedSubmission 计划与实绩对齐后的统一视图。
// 每次查询即时重算, 不落库。
type MergedSubmission struct {
	Key               GroupKey   `json:"key"`
	Target            Record     `json:"-"`
	Actual            Record     `json:"-"`
	DisplayLabel      string     `json:"display_label"`
	Status            Status     `json:"status"`
	Variances         []Variance `json:"variances,omitempty"`
	LatestSubmittedAt *time.Time `json:"latest_submitted_at,omitempty"`
}

// MatchWarning 匹配过程中就地恢复的数据异常。
type MatchWarning struct {
	Err       error
	Key       GroupKey
	KeptID    string
	DroppedID string
}

// Merge 将一批原始提报按键去重合并。纯函数, 幂等:
// 同一输入两次调用产出完全一致(内容与顺序)。
//
// 键冲突(同键多条 target 或 actual)属于上游数据污染, 保留
// 提交时间最近的一条(并列时保留先到的), 以 MatchWarning 上报。
func Merge(records []Record, mode MatchMode) ([]MergedSubmission, []MatchWarning, error) {
	type group struct {
		key       GroupKey
		firstSeen int
		target    Record
		actual    Record
	}

	groups := make(map[GroupKey]*group)
	order := make([]GroupKey, 0, len(records))
	var warnings []MatchWarning

	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, warnings, err
		}

		key := GroupKey{
			Stage:          rec.Stage(),
			ProductionDate: rec.ProductionDay(),
			LineID:         rec.Line(),
		}
		if mode == MatchStrict {
			key.WorkOrderID = rec.WorkOrder()
		}

		g, ok := groups[key]
		if !ok {
			g = &group{key: key, firstSeen: i}
			groups[key] = g
			order = append(order, key)
		}

		var slot *Record
		if rec.Phase() == PhaseTarget {
			slot = &g.target
		} else {
			slot = &g.actual
		}

		if *slot == nil {
			*slot = rec
			continue
		}

		// 冲突: 保留提交时间较新的, 并列保留先到的。
		kept, dropped := *slot, rec
		if submittedAfter(rec.SubmittedTime(), (*slot).SubmittedTime()) {
			kept, dropped = rec, *slot
		}
		*slot = kept
		warnings = append(warnings, MatchWarning{
			Err:       ErrAmbiguousGroup,
			Key:       key,
			KeptID:    kept.RecordID(),
			DroppedID: dropped.RecordID(),
		})
	}

	merged := make([]MergedSubmission, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.target == nil && g.actual == nil {
			continue
		}
		merged = append(merged, MergedSubmission{
			Key:               g.key,
			Target:            g.target,
			Actual:            g.actual,
			DisplayLabel:      g.key.String(),
			LatestSubmittedAt: latestSubmitted(g.target, g.actual),
		})
	}

	// 生产日期倒序(最近在前), 同日按首见顺序。
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Key.ProductionDate > merged[j].Key.ProductionDate
	})

	return merged, warnings, nil
}

func validateRecord(rec Record) error {
	switch {
	case rec.Stage() == "":
		return &ValidationError{RecordID: rec.RecordID(), Field: "stage"}
	case rec.ProductionDay() == "":
		return &ValidationError{RecordID: rec.RecordID(), Field: "production_date"}
	case rec.Line() == "":
		return &ValidationError{RecordID: rec.RecordID(), Field: "line_id"}
	case rec.Phase() != PhaseTarget && rec.Phase() != PhaseActual:
		return &ValidationError{RecordID: rec.RecordID(), Field: "phase"}
	}
	return nil
}

// submittedAfter 仅当 a 严格晚于 b 时为真; nil 视为最早。
func submittedAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

func latestSubmitted(target, actual Record) *time.Time {
	var latest *time.Time
	for _, rec := range []Record{target, actual} {
		if rec == nil {
			continue
		}
		if ts := rec.SubmittedTime(); ts != nil {
			if latest == nil || ts.After(*latest) {
				t := *ts
				latest = &t
			}
		}
	}
	return latest
}
