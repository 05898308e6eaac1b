package engine

import "time"

// Stage 生产工段
type Stage string

const (
	StageSewing    Stage = "sewing"    // 缝制
	StageCutting   Stage = "cutting"   // 裁剪
	StageFinishing Stage = "finishing" // 后整
)

// Phase 提报阶段: 早上提报计划(target), 收班提报实绩(actual)
type Phase string

const (
	PhaseTarget Phase = "target"
	PhaseActual Phase = "actual"
)

// Record 是各工段原始提报记录的统一能力接口。
// 每个 工段+阶段 组合对应一张独立的表, 实体各自实现本接口,
// 引擎只通过接口读取, 从不回写。
type Record interface {
	RecordID() string
	Stage() Stage
	Phase() Phase
	// ProductionDay 返回生产日历日, 格式 2006-01-02。
	ProductionDay() string
	Line() string
	WorkOrder() string
	// SubmittedTime 提交时间, 未记录时为 nil。
	SubmittedTime() *time.Time
}

// MetricSource 暴露可配对比较的数值指标。
// 同名指标在 target/actual 两侧按 Name 配对计算差异。
type MetricSource interface {
	Metrics() []Metric
}

// Metric 单个数值指标及其展示精度。
// 精度跟随指标定义: 比率类 2 位小数, 件数/人力 0 位。
type Metric struct {
	Name      string
	Label     string
	Precision int
	Value     float64
}

// BlockerInfo 堵点(阻碍)描述, 挂在实绩记录上。
type BlockerInfo struct {
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Owner       string `json:"owner"`
}

// BlockerCarrier 可上报堵点的记录 (实绩侧)。
type BlockerCarrier interface {
	BlockerFlagged() bool
	Blocker() *BlockerInfo
}

// LateMarker 可标记迟报的记录 (计划侧)。
type LateMarker interface {
	LateFlagged() bool
}

// AckMarker 需要下游确认的记录 (裁剪实绩)。
type AckMarker interface {
	IsAcknowledged() bool
}

// OutputProvider 暴露工段的主产出量 (缝制=良品, 裁剪=裁片, 后整=装箱)。
type OutputProvider interface {
	PrimaryOutput() float64
}

// QualityProvider 暴露质检计数, 仅缝制实绩实现。
type QualityProvider interface {
	RejectCount() float64
	ReworkCount() float64
}

// HoursProvider 暴露实际工时, 用于平均时产。
type HoursProvider interface {
	HoursWorked() float64
}
