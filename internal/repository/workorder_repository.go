package repository

import (
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(wo *entity.WorkOrder) error {
	return r.db.Create(wo).Error
}

func (r *WorkOrderRepository) FindByID(id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.Where("id = ?", id).First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) FindByPO(poNumber string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.Where("po_number = ?", poNumber).First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

type WorkOrderListParams struct {
	Keyword string
	Status  string
	Page    int
	Size    int
}

func (r *WorkOrderRepository) List(params WorkOrderListParams) ([]entity.WorkOrder, int64, error) {
	query := r.db.Model(&entity.WorkOrder{})

	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("po_number ILIKE ? OR buyer ILIKE ? OR style ILIKE ?", kw, kw, kw)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.Size < 1 {
		params.Size = 20
	}

	var orders []entity.WorkOrder
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&orders).Error
	return orders, total, err
}

// AddExtrasConsumed 登记额外产出的消耗量 (裁剪补片等场景)。
// 自增带上限条件, 并发消耗由数据库一次更新判定, 不透支。
func (r *WorkOrderRepository) AddExtrasConsumed(id string, qty, maxTotal float64) error {
	tx := r.db.Model(&entity.WorkOrder{}).
		Where("id = ? AND extras_consumed + ? <= ?", id, qty, maxTotal).
		Update("extras_consumed", gorm.Expr("extras_consumed + ?", qty))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LineRepository 生产线查找表。
type LineRepository struct {
	db *gorm.DB
}

func NewLineRepository(db *gorm.DB) *LineRepository {
	return &LineRepository{db: db}
}

func (r *LineRepository) Create(line *entity.ProductionLine) error {
	return r.db.Create(line).Error
}

func (r *LineRepository) List() ([]entity.ProductionLine, error) {
	var lines []entity.ProductionLine
	err := r.db.Where("active = true").Order("id ASC").Find(&lines).Error
	return lines, err
}

// NamesByID 反规范化查找: 线ID -> 展示名, 供合并视图补 DisplayLabel。
func (r *LineRepository) NamesByID() (map[string]string, error) {
	lines, err := r.List()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(lines))
	for _, l := range lines {
		names[l.ID] = l.Name
	}
	return names, nil
}
