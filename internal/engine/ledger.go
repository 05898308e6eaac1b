package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine 一笔仓储台账的原始输入(未计算余额)。
type LedgerLine struct {
	ID              string
	TransactionDate time.Time
	CreatedAt       time.Time
	Receive         decimal.Decimal
	Issue           decimal.Decimal
	Remarks         string
	BatchID         string
}

// LedgerEntry 计算后的台账行: 逐笔结转的累计收与结余。
type LedgerEntry struct {
	LedgerLine
	RunningReceive decimal.Decimal
	Balance        decimal.Decimal
}

// AnomalyKind 台账数据异常类别。异常不是错误: 输出保持确定,
// 仅记录下来供运营跟进。
type AnomalyKind string

const (
	AnomalyAmbiguousOrder  AnomalyKind = "ambiguous_order"
	AnomalyNegativeBalance AnomalyKind = "negative_balance"
)

// LedgerAnomaly 单条异常及其涉及的台账行。
type LedgerAnomaly struct {
	Kind    AnomalyKind `json:"kind"`
	EntryID string      `json:"entry_id"`
	OtherID string      `json:"other_id,omitempty"`
	Err     error       `json:"-"`
}

// Ledger 一张卡的完整计算结果。
type Ledger struct {
	Entries   []LedgerEntry
	Anomalies []LedgerAnomaly
}

// BuildLedger 按规范顺序(交易日期升序, 再创建时间升序)排序并逐笔结转余额:
//
//	balance[0] = receive[0] - issue[0]
//	balance[n] = balance[n-1] + receive[n] - issue[n]
//
// 排序键完全并列的两行无法确定先后, 保留首见顺序并记
// ambiguous_order 异常; 结余为负记 negative_balance 异常,
// 两者都不中断计算。
func BuildLedger(lines []LedgerLine) Ledger {
	sorted := make([]LedgerLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TransactionDate.Equal(sorted[j].TransactionDate) {
			return sorted[i].TransactionDate.Before(sorted[j].TransactionDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	ledger := Ledger{Entries: make([]LedgerEntry, 0, len(sorted))}

	running := decimal.Zero
	balance := decimal.Zero
	for i, line := range sorted {
		if i > 0 && sameSortKey(sorted[i-1], line) {
			ledger.Anomalies = append(ledger.Anomalies, LedgerAnomaly{
				Kind:    AnomalyAmbiguousOrder,
				EntryID: line.ID,
				OtherID: sorted[i-1].ID,
				Err:     ErrAmbiguousOrder,
			})
		}

		running = running.Add(line.Receive)
		balance = balance.Add(line.Receive).Sub(line.Issue)

		if balance.IsNegative() {
			ledger.Anomalies = append(ledger.Anomalies, LedgerAnomaly{
				Kind:    AnomalyNegativeBalance,
				EntryID: line.ID,
			})
		}

		ledger.Entries = append(ledger.Entries, LedgerEntry{
			LedgerLine:     line,
			RunningReceive: running,
			Balance:        balance,
		})
	}

	return ledger
}

// LatestBalance 最后一行的结余, 无记录时为 0。
func (l Ledger) LatestBalance() decimal.Decimal {
	if len(l.Entries) == 0 {
		return decimal.Zero
	}
	return l.Entries[len(l.Entries)-1].Balance
}

// TotalReceived 全部收货量合计。
func (l Ledger) TotalReceived() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.Entries {
		sum = sum.Add(e.Receive)
	}
	return sum
}

// TotalIssued 全部发料量合计。
func (l Ledger) TotalIssued() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.Entries {
		sum = sum.Add(e.Issue)
	}
	return sum
}

func sameSortKey(a, b LedgerLine) bool {
	return a.TransactionDate.Equal(b.TransactionDate) && a.CreatedAt.Equal(b.CreatedAt)
}

// CardLedger 参与组汇总的一张卡及其台账输入。
type CardLedger struct {
	CardID string
	Lines  []LedgerLine
}

// GroupRollup 共用同一物理货位的多张卡(多个PO)的汇总视图。
// 各卡台账彼此独立, 汇总只对各卡最终结余求和, 不合并成一条流水。
type GroupRollup struct {
	Signature     string          `json:"signature"`
	Name          string          `json:"name"`
	CardCount     int             `json:"card_count"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalIssued   decimal.Decimal `json:"total_issued"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	Anomalies     []LedgerAnomaly `json:"anomalies,omitempty"`
}

// RollupGroup 独立计算每张成员卡的台账后汇总。幂等。
func RollupGroup(signature, name string, cards []CardLedger) GroupRollup {
	rollup := GroupRollup{
		Signature:     signature,
		Name:          name,
		CardCount:     len(cards),
		TotalReceived: decimal.Zero,
		TotalIssued:   decimal.Zero,
		TotalBalance:  decimal.Zero,
	}

	for _, card := range cards {
		ledger := BuildLedger(card.Lines)
		rollup.TotalReceived = rollup.TotalReceived.Add(ledger.TotalReceived())
		rollup.TotalIssued = rollup.TotalIssued.Add(ledger.TotalIssued())
		rollup.TotalBalance = rollup.TotalBalance.Add(ledger.LatestBalance())
		rollup.Anomalies = append(rollup.Anomalies, ledger.Anomalies...)
	}

	return rollup
}
