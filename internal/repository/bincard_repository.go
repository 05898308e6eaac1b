package repository

import (
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
	"gorm.io/gorm"
)

type BinCardRepository struct {
	db *gorm.DB
}

func NewBinCardRepository(db *gorm.DB) *BinCardRepository {
	return &BinCardRepository{db: db}
}

func (r *BinCardRepository) Create(card *entity.BinCard) error {
	return r.db.Create(card).Error
}

func (r *BinCardRepository) FindByID(id string) (*entity.BinCard, error) {
	var card entity.BinCard
	err := r.db.Where("id = ?", id).First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

type BinCardListParams struct {
	Keyword        string
	GroupSignature string
	Page           int
	Size           int
}

func (r *BinCardRepository) List(params BinCardListParams) ([]entity.BinCard, int64, error) {
	query := r.db.Model(&entity.BinCard{})

	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("po_number ILIKE ? OR buyer ILIKE ? OR style ILIKE ? OR supplier ILIKE ?", kw, kw, kw, kw)
	}
	if params.GroupSignature != "" {
		query = query.Where("group_signature = ?", params.GroupSignature)
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

	var cards []entity.BinCard
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&cards).Error
	return cards, total, err
}

// ListByGroup 取同一货位组的全部成员卡。
func (r *BinCardRepository) ListByGroup(signature string) ([]entity.BinCard, error) {
	var cards []entity.BinCard
	err := r.db.Where("group_signature = ?", signature).
		Order("created_at ASC").
		Find(&cards).Error
	return cards, err
}

func (r *BinCardRepository) CreateTransaction(tx *entity.BinTransaction) error {
	return r.db.Create(tx).Error
}

// CreateTransactions 批量录入, 调用方为整批赋同一 batch_id。
// refresh 里是因回填改变了规范顺序、需要重写快照的已有行,
// 与新行写入走同一事务。
func (r *BinCardRepository) CreateTransactions(txs []*entity.BinTransaction, refresh []*entity.BinTransaction) error {
	return r.db.Transaction(func(db *gorm.DB) error {
		for _, tx := range txs {
			if err := db.Create(tx).Error; err != nil {
				return err
			}
		}
		for _, tx := range refresh {
			err := db.Model(&entity.BinTransaction{}).
				Where("id = ?", tx.ID).
				Updates(map[string]interface{}{
					"running_receive_total": tx.RunningReceiveTotal,
					"balance_qty":           tx.BalanceQty,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListTransactions 按规范台账顺序(交易日期升序, 创建时间升序)返回。
func (r *BinCardRepository) ListTransactions(cardID string) ([]entity.BinTransaction, error) {
	var txs []entity.BinTransaction
	err := r.db.Where("bin_card_id = ?", cardID).
		Order("transaction_date ASC, created_at ASC").
		Find(&txs).Error
	return txs, err
}

func (r *BinCardRepository) CountTransactions(cardID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.BinTransaction{}).
		Where("bin_card_id = ?", cardID).
		Count(&count).Error
	return count, err
}

// DeleteCard 只删卡本身, 不级联; 台账未清时由服务层拒绝。
func (r *BinCardRepository) DeleteCard(id string) error {
	tx := r.db.Where("id = ?", id).Delete(&entity.BinCard{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCardCascade 先删台账再删卡, 放在同一事务里:
// 任一步失败整体回滚, 不留半删状态。
func (r *BinCardRepository) DeleteCardCascade(id string) error {
	return r.db.Transaction(func(db *gorm.DB) error {
		if err := db.Where("bin_card_id = ?", id).Delete(&entity.BinTransaction{}).Error; err != nil {
			return err
		}
		tx := db.Where("id = ?", id).Delete(&entity.BinCard{})
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
