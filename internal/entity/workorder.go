package entity

import "time"

// WorkOrder 工单 (一个 PO 的生产任务)。
type WorkOrder struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PONumber       string    `json:"po_number" gorm:"size:64;not null;uniqueIndex"`
	Buyer          string    `json:"buyer" gorm:"size:128"`
	Style          string    `json:"style" gorm:"size:128"`
	Description    string    `json:"description" gorm:"type:text"`
	OrderQty       float64   `json:"order_qty" gorm:"type:decimal(12,0);not null;default:0"`
	ExtrasConsumed float64   `json:"extras_consumed" gorm:"type:decimal(12,0);default:0"`
	Status         string    `json:"status" gorm:"size:20;default:open"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (WorkOrder) TableName() string { return "llh_work_orders" }

// ProductionLine 车间生产线, 仅提供展示名等反规范化查找。
type ProductionLine struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	Name       string    `json:"name" gorm:"size:128;not null"`
	Department string    `json:"department" gorm:"size:32"` // sewing / cutting / finishing
	Active     bool      `json:"active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProductionLine) TableName() string { return "llh_lines" }
