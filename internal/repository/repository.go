package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	Submission *SubmissionRepository
	BinCard    *BinCardRepository
	WorkOrder  *WorkOrderRepository
	Line       *LineRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Submission: NewSubmissionRepository(db),
		BinCard:    NewBinCardRepository(db),
		WorkOrder:  NewWorkOrderRepository(db),
		Line:       NewLineRepository(db),
	}
}
