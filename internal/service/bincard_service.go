package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BinCardService 仓储卡台账。行内存的 running/balance 快照在写入时
// 按规范顺序结转一次, 读路径仍由引擎全量重算, 二者口径一致。
type BinCardService struct {
	repo   *repository.BinCardRepository
	logger *zap.Logger
}

func NewBinCardService(repo *repository.BinCardRepository, logger *zap.Logger) *BinCardService {
	return &BinCardService{repo: repo, logger: logger}
}

// CreateBinCardRequest 建卡。
type CreateBinCardRequest struct {
	PONumber       string `json:"po_number" binding:"required"`
	Buyer          string `json:"buyer"`
	Style          string `json:"style"`
	Supplier       string `json:"supplier"`
	Description    string `json:"description"`
	GroupSignature string `json:"group_signature"`
	GroupName      string `json:"group_name"`
}

func (s *BinCardService) CreateCard(req CreateBinCardRequest, userID string) (*entity.BinCard, error) {
	card := &entity.BinCard{
		ID:             uuid.New().String(),
		PONumber:       req.PONumber,
		Buyer:          req.Buyer,
		Style:          req.Style,
		Supplier:       req.Supplier,
		Description:    req.Description,
		GroupSignature: req.GroupSignature,
		GroupName:      req.GroupName,
		CreatedBy:      userID,
	}
	if err := s.repo.Create(card); err != nil {
		return nil, fmt.Errorf("create bin card: %w", err)
	}
	return card, nil
}

func (s *BinCardService) List(params repository.BinCardListParams) ([]entity.BinCard, int64, error) {
	return s.repo.List(params)
}

// TransactionRequest 单笔收发录入。
type TransactionRequest struct {
	TransactionDate string          `json:"transaction_date" binding:"required"` // 2006-01-02
	ReceiveQty      decimal.Decimal `json:"receive_qty"`
	IssueQty        decimal.Decimal `json:"issue_qty"`
	Remarks         string          `json:"remarks"`
}

func (req TransactionRequest) validate() (time.Time, error) {
	date, err := time.Parse("2006-01-02", req.TransactionDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid transaction_date %q: %w", req.TransactionDate, err)
	}
	if req.ReceiveQty.IsNegative() || req.IssueQty.IsNegative() {
		return time.Time{}, fmt.Errorf("receive/issue qty must not be negative")
	}
	return date, nil
}

// AppendTransaction 追加一笔台账并固化其 running/balance 快照。
func (s *BinCardService) AppendTransaction(cardID string, req TransactionRequest, userID string) (*entity.BinTransaction, error) {
	txs, err := s.appendTransactions(cardID, []TransactionRequest{req}, "", userID)
	if err != nil {
		return nil, err
	}
	return txs[0], nil
}

// AppendBatch 批量录入, 整批共用一个批次号。
func (s *BinCardService) AppendBatch(cardID string, reqs []TransactionRequest, userID string) ([]*entity.BinTransaction, string, error) {
	if len(reqs) == 0 {
		return nil, "", fmt.Errorf("empty batch")
	}
	batchID := uuid.New().String()
	txs, err := s.appendTransactions(cardID, reqs, batchID, userID)
	return txs, batchID, err
}

func (s *BinCardService) appendTransactions(cardID string, reqs []TransactionRequest, batchID, userID string) ([]*entity.BinTransaction, error) {
	if _, err := s.repo.FindByID(cardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", engine.ErrUnknownCard, cardID)
		}
		return nil, fmt.Errorf("find bin card: %w", err)
	}

	existing, err := s.repo.ListTransactions(cardID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	lines := toLedgerLines(existing)

	now := time.Now()
	newTxs := make([]*entity.BinTransaction, 0, len(reqs))
	for i, req := range reqs {
		date, err := req.validate()
		if err != nil {
			return nil, err
		}
		tx := &entity.BinTransaction{
			ID:              uuid.New().String(),
			BinCardID:       cardID,
			TransactionDate: date,
			ReceiveQty:      req.ReceiveQty,
			IssueQty:        req.IssueQty,
			Remarks:         req.Remarks,
			BatchID:         batchID,
			CreatedBy:       userID,
			// 批内按录入次序错开创建时间, 保持台账顺序确定。
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		newTxs = append(newTxs, tx)
		lines = append(lines, engine.LedgerLine{
			ID:              tx.ID,
			TransactionDate: tx.TransactionDate,
			CreatedAt:       tx.CreatedAt,
			Receive:         tx.ReceiveQty,
			Issue:           tx.IssueQty,
		})
	}

	// 新行插入规范顺序后的快照, 对回填早于已有记录的日期同样成立。
	ledger := engine.BuildLedger(lines)
	s.logAnomalies(cardID, ledger.Anomalies)
	snapshots := make(map[string]engine.LedgerEntry, len(ledger.Entries))
	for _, e := range ledger.Entries {
		snapshots[e.ID] = e
	}
	for _, tx := range newTxs {
		snap := snapshots[tx.ID]
		tx.RunningReceiveTotal = snap.RunningReceive
		tx.BalanceQty = snap.Balance
	}

	// 回填会把已有行挤到规范顺序靠后的位置, 其存量快照随之失效,
	// 与新行同一事务内重写。
	refresh := make([]*entity.BinTransaction, 0)
	for i := range existing {
		old := &existing[i]
		snap, ok := snapshots[old.ID]
		if !ok {
			continue
		}
		if old.RunningReceiveTotal.Equal(snap.RunningReceive) && old.BalanceQty.Equal(snap.Balance) {
			continue
		}
		old.RunningReceiveTotal = snap.RunningReceive
		old.BalanceQty = snap.Balance
		refresh = append(refresh, old)
	}

	if err := s.repo.CreateTransactions(newTxs, refresh); err != nil {
		return nil, fmt.Errorf("append transactions: %w", err)
	}
	return newTxs, nil
}

// CardLedgerView 一张卡的完整台账视图。
type CardLedgerView struct {
	Card          *entity.BinCard        `json:"card"`
	Entries       []engine.LedgerEntry   `json:"entries"`
	LatestBalance decimal.Decimal        `json:"latest_balance"`
	TotalReceived decimal.Decimal        `json:"total_received"`
	TotalIssued   decimal.Decimal        `json:"total_issued"`
	Anomalies     []engine.LedgerAnomaly `json:"anomalies,omitempty"`
}

// GetLedger 重算一张卡的全部结转余额。
func (s *BinCardService) GetLedger(cardID string) (*CardLedgerView, error) {
	card, err := s.repo.FindByID(cardID)
	if err != nil {
		return nil, fmt.Errorf("bin card not found: %w", err)
	}

	txs, err := s.repo.ListTransactions(cardID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	ledger := engine.BuildLedger(toLedgerLines(txs))
	s.logAnomalies(cardID, ledger.Anomalies)

	return &CardLedgerView{
		Card:          card,
		Entries:       ledger.Entries,
		LatestBalance: ledger.LatestBalance(),
		TotalReceived: ledger.TotalReceived(),
		TotalIssued:   ledger.TotalIssued(),
		Anomalies:     ledger.Anomalies,
	}, nil
}

// GetGroupRollup 货位组汇总: 各成员卡独立结转, 只对最终结余求和。
func (s *BinCardService) GetGroupRollup(signature string) (*engine.GroupRollup, error) {
	cards, err := s.repo.ListByGroup(signature)
	if err != nil {
		return nil, fmt.Errorf("load group members: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("bin group not found: %w", gorm.ErrRecordNotFound)
	}

	ledgers := make([]engine.CardLedger, 0, len(cards))
	groupName := cards[0].GroupName
	for _, card := range cards {
		txs, err := s.repo.ListTransactions(card.ID)
		if err != nil {
			return nil, fmt.Errorf("load transactions for card %s: %w", card.ID, err)
		}
		ledgers = append(ledgers, engine.CardLedger{CardID: card.ID, Lines: toLedgerLines(txs)})
	}

	rollup := engine.RollupGroup(signature, groupName, ledgers)
	return &rollup, nil
}

// DeleteCard 删卡。台账未清且未要求级联时拒绝, 返回
// engine.ErrDanglingTransactions; 级联删除走单事务"先台账后卡"。
func (s *BinCardService) DeleteCard(cardID string, cascade bool) error {
	if _, err := s.repo.FindByID(cardID); err != nil {
		return fmt.Errorf("bin card not found: %w", err)
	}

	count, err := s.repo.CountTransactions(cardID)
	if err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}

	if count > 0 && !cascade {
		return fmt.Errorf("%w: card %s has %d transactions", engine.ErrDanglingTransactions, cardID, count)
	}

	if count > 0 {
		return s.repo.DeleteCardCascade(cardID)
	}
	return s.repo.DeleteCard(cardID)
}

func (s *BinCardService) logAnomalies(cardID string, anomalies []engine.LedgerAnomaly) {
	for _, a := range anomalies {
		s.logger.Warn("bin ledger anomaly",
			zap.String("card_id", cardID),
			zap.String("kind", string(a.Kind)),
			zap.String("entry_id", a.EntryID),
			zap.String("other_id", a.OtherID),
		)
	}
}

func toLedgerLines(txs []entity.BinTransaction) []engine.LedgerLine {
	lines := make([]engine.LedgerLine, 0, len(txs))
	for _, tx := range txs {
		lines = append(lines, engine.LedgerLine{
			ID:              tx.ID,
			TransactionDate: tx.TransactionDate,
			CreatedAt:       tx.CreatedAt,
			Receive:         tx.ReceiveQty,
			Issue:           tx.IssueQty,
			Remarks:         tx.Remarks,
			BatchID:         tx.BatchID,
		})
	}
	return lines
}
