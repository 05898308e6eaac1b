package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BinCard 按 PO 建立的仓储卡。共用同一物理货位的多张卡
// 通过 GroupSignature 归到同一个货位组。
type BinCard struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PONumber       string    `json:"po_number" gorm:"size:64;not null;index"`
	Buyer          string    `json:"buyer" gorm:"size:128"`
	Style          string    `json:"style" gorm:"size:128"`
	Supplier       string    `json:"supplier" gorm:"size:128"`
	Description    string    `json:"description" gorm:"type:text"`
	GroupSignature string    `json:"group_signature" gorm:"size:128;index"`
	GroupName      string    `json:"group_name" gorm:"size:128"`
	CreatedBy      string    `json:"created_by" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (BinCard) TableName() string { return "llh_bin_cards" }

// BinTransaction 仓储卡的一笔收发记录, 只追加。
// RunningReceiveTotal 与 BalanceQty 是写入时按规范顺序结转的快照,
// 读路径仍以引擎重算为准。
type BinTransaction struct {
	ID                  string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BinCardID           string          `json:"bin_card_id" gorm:"type:uuid;not null;index"`
	TransactionDate     time.Time       `json:"transaction_date" gorm:"type:date;not null;index"`
	ReceiveQty          decimal.Decimal `json:"receive_qty" gorm:"type:decimal(20,4);not null;default:0"`
	IssueQty            decimal.Decimal `json:"issue_qty" gorm:"type:decimal(20,4);not null;default:0"`
	RunningReceiveTotal decimal.Decimal `json:"running_receive_total" gorm:"type:decimal(20,4);default:0"`
	BalanceQty          decimal.Decimal `json:"balance_qty" gorm:"type:decimal(20,4);default:0"`
	Remarks             string          `json:"remarks" gorm:"type:text"`
	BatchID             string          `json:"batch_id" gorm:"size:36;index"` // 批量录入共用同一批次号
	CreatedBy           string          `json:"created_by" gorm:"size:64"`
	CreatedAt           time.Time       `json:"created_at"`
}

func (BinTransaction) TableName() string { return "llh_bin_transactions" }
