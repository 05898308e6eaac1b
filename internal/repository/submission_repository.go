package repository

import (
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
	"gorm.io/gorm"
)

// SubmissionRepository 六张提报表的统一读写入口。
// 读路径把各表的行拍平成 []engine.Record 交给引擎, 不在存储层做 join;
// 线名/工单展示字段由调用方另行查找补充。
type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// ==================== 写入 (只追加) ====================

func (r *SubmissionRepository) CreateSewingTarget(t *entity.SewingTarget) error {
	return r.db.Create(t).Error
}

func (r *SubmissionRepository) CreateSewingActual(a *entity.SewingActual) error {
	return r.db.Create(a).Error
}

func (r *SubmissionRepository) CreateCuttingTarget(t *entity.CuttingTarget) error {
	return r.db.Create(t).Error
}

func (r *SubmissionRepository) CreateCuttingActual(a *entity.CuttingActual) error {
	return r.db.Create(a).Error
}

func (r *SubmissionRepository) CreateFinishingTarget(t *entity.FinishingTarget) error {
	return r.db.Create(t).Error
}

func (r *SubmissionRepository) CreateFinishingActual(a *entity.FinishingActual) error {
	return r.db.Create(a).Error
}

// ==================== 读取 ====================

// ListByDate 取一个生产日的全部提报。stage 为空时取三个工段。
func (r *SubmissionRepository) ListByDate(date time.Time, stage engine.Stage) ([]engine.Record, error) {
	return r.load(func(q *gorm.DB) *gorm.DB {
		return q.Where("production_date = ?", date.Format("2006-01-02"))
	}, stage)
}

// ListByWorkOrder 取一个工单在可选日期区间内的全部提报。
func (r *SubmissionRepository) ListByWorkOrder(workOrderID string, from, to *time.Time) ([]engine.Record, error) {
	return r.load(func(q *gorm.DB) *gorm.DB {
		q = q.Where("work_order_id = ?", workOrderID)
		if from != nil {
			q = q.Where("production_date >= ?", from.Format("2006-01-02"))
		}
		if to != nil {
			q = q.Where("production_date <= ?", to.Format("2006-01-02"))
		}
		return q
	}, "")
}

type scopeFn func(*gorm.DB) *gorm.DB

func (r *SubmissionRepository) load(scope scopeFn, stage engine.Stage) ([]engine.Record, error) {
	var records []engine.Record

	if stage == "" || stage == engine.StageSewing {
		var targets []entity.SewingTarget
		if err := scope(r.db.Model(&entity.SewingTarget{})).Find(&targets).Error; err != nil {
			return nil, err
		}
		var actuals []entity.SewingActual
		if err := scope(r.db.Model(&entity.SewingActual{})).Find(&actuals).Error; err != nil {
			return nil, err
		}
		for i := range targets {
			records = append(records, &targets[i])
		}
		for i := range actuals {
			records = append(records, &actuals[i])
		}
	}

	if stage == "" || stage == engine.StageCutting {
		var targets []entity.CuttingTarget
		if err := scope(r.db.Model(&entity.CuttingTarget{})).Find(&targets).Error; err != nil {
			return nil, err
		}
		var actuals []entity.CuttingActual
		if err := scope(r.db.Model(&entity.CuttingActual{})).Find(&actuals).Error; err != nil {
			return nil, err
		}
		for i := range targets {
			records = append(records, &targets[i])
		}
		for i := range actuals {
			records = append(records, &actuals[i])
		}
	}

	if stage == "" || stage == engine.StageFinishing {
		var targets []entity.FinishingTarget
		if err := scope(r.db.Model(&entity.FinishingTarget{})).Find(&targets).Error; err != nil {
			return nil, err
		}
		var actuals []entity.FinishingActual
		if err := scope(r.db.Model(&entity.FinishingActual{})).Find(&actuals).Error; err != nil {
			return nil, err
		}
		for i := range targets {
			records = append(records, &targets[i])
		}
		for i := range actuals {
			records = append(records, &actuals[i])
		}
	}

	return records, nil
}

// ==================== 状态字段更新 (生命周期唯一的就地改动) ====================

// ResolveBlocker 解除实绩上的堵点。只动状态字段, 其余列保持不变。
func (r *SubmissionRepository) ResolveBlocker(stage engine.Stage, id string, resolvedAt time.Time) error {
	updates := map[string]interface{}{
		"has_blocker":         false,
		"blocker_resolved_at": resolvedAt,
	}

	var tx *gorm.DB
	switch stage {
	case engine.StageSewing:
		tx = r.db.Model(&entity.SewingActual{}).Where("id = ? AND has_blocker = true", id).Updates(updates)
	case engine.StageCutting:
		tx = r.db.Model(&entity.CuttingActual{}).Where("id = ? AND has_blocker = true", id).Updates(updates)
	case engine.StageFinishing:
		tx = r.db.Model(&entity.FinishingActual{}).Where("id = ? AND has_blocker = true", id).Updates(updates)
	default:
		return gorm.ErrRecordNotFound
	}

	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AcknowledgeCutting 缝制主管确认裁剪实绩。
func (r *SubmissionRepository) AcknowledgeCutting(id, userID string, at time.Time) error {
	tx := r.db.Model(&entity.CuttingActual{}).
		Where("id = ? AND acknowledged = false", id).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_by": userID,
			"acknowledged_at": at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
