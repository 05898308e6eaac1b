package engine

import "errors"

var (
	// ErrAmbiguousGroup 同一分组键下出现多条 target 或多条 actual。
	// 引擎就地恢复(保留最近提交的一条), 仅以告警形式上报, 不中断。
	ErrAmbiguousGroup = errors.New("engine: more than one submission for group key")

	// ErrAmbiguousOrder 同一卡的两笔台账在排序键(日期+创建时间)上完全相同,
	// 无法确定先后。保留首见顺序以保证输出确定, 同时上报告警。
	ErrAmbiguousOrder = errors.New("engine: ledger entries tie on sort key")

	// ErrDanglingTransactions 卡下仍有台账记录时拒绝删卡。
	ErrDanglingTransactions = errors.New("engine: bin card still has transactions")

	// ErrDivisionGuard 比率计算的内部哨兵: 分母为零/为负时回落为 0,
	// 永远不会透出给调用方。
	ErrDivisionGuard = errors.New("engine: division guard")

	// ErrUnknownCard 台账记录引用了不存在的卡。
	ErrUnknownCard = errors.New("engine: transaction references unknown bin card")
)

// ValidationError 输入记录缺少必填标识, 快速失败而不是生成脏的合并记录。
type ValidationError struct {
	RecordID string
	Field    string
}

func (e *ValidationError) Error() string {
	return "engine: record " + e.RecordID + " missing required field " + e.Field
}
