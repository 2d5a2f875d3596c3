package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/ledgerbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// registerOrder is the canonical register ordering: date, then the
// store-assigned insertion sequence as the same-day tie-break.
const registerOrder = "date ASC, sequence ASC"

// GormBankTransactionRepository implements BankTransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormBankTransactionRepository) WithTx(tx *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: tx}
}

// FindByIDForEntity finds a register transaction within an entity
func (r *GormBankTransactionRepository) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.BankTransaction, error) {
	var model models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("entity_id = ? AND id = ?", entityID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBankAccount lists transactions for a bank account with filtering.
// Results follow the canonical register order unless the filter asks for
// the reverse.
func (r *GormBankTransactionRepository) FindByBankAccount(ctx context.Context, bankAccountID uuid.UUID, filter ledger.BankTransactionFilter) ([]ledger.BankTransaction, error) {
	var txnModels []models.BankTransactionModel

	query := r.applyFilter(
		r.db.WithContext(ctx).Where("bank_account_id = ?", bankAccountID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if strings.EqualFold(strings.TrimSpace(filter.OrderDir), "DESC") {
		query = query.Order("date DESC, sequence DESC")
	} else {
		query = query.Order(registerOrder)
	}

	if err := query.Find(&txnModels).Error; err != nil {
		return nil, err
	}

	txns := make([]ledger.BankTransaction, len(txnModels))
	for i := range txnModels {
		txns[i] = *txnModels[i].ToDomain()
	}
	return txns, nil
}

// CountByBankAccount counts transactions matching the filter
func (r *GormBankTransactionRepository) CountByBankAccount(ctx context.Context, bankAccountID uuid.UUID, filter ledger.BankTransactionFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BankTransactionModel{}).Where("bank_account_id = ?", bankAccountID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindRegister loads the complete register in canonical order
func (r *GormBankTransactionRepository) FindRegister(ctx context.Context, bankAccountID uuid.UUID) ([]*ledger.BankTransaction, error) {
	var txnModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("bank_account_id = ?", bankAccountID).
		Order(registerOrder).
		Find(&txnModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(txnModels), nil
}

// FindFrom loads transactions at or after the (date, sequence) position
func (r *GormBankTransactionRepository) FindFrom(ctx context.Context, bankAccountID uuid.UUID, date time.Time, sequence uint64) ([]*ledger.BankTransaction, error) {
	var txnModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("bank_account_id = ?", bankAccountID).
		Where("date > ? OR (date = ? AND sequence >= ?)", date, date, sequence).
		Order(registerOrder).
		Find(&txnModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(txnModels), nil
}

// LastBefore returns the transaction immediately preceding the
// (date, sequence) position, or nil if the position is first
func (r *GormBankTransactionRepository) LastBefore(ctx context.Context, bankAccountID uuid.UUID, date time.Time, sequence uint64) (*ledger.BankTransaction, error) {
	var model models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("bank_account_id = ?", bankAccountID).
		Where("date < ? OR (date = ? AND sequence < ?)", date, date, sequence).
		Order("date DESC, sequence DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByJournalEntry lists the transactions emitted by a posting
func (r *GormBankTransactionRepository) FindByJournalEntry(ctx context.Context, journalEntryID uuid.UUID) ([]*ledger.BankTransaction, error) {
	var txnModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("journal_entry_id = ?", journalEntryID).
		Order(registerOrder).
		Find(&txnModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(txnModels), nil
}

// FindUnreconciled lists unreconciled transactions in canonical order
func (r *GormBankTransactionRepository) FindUnreconciled(ctx context.Context, bankAccountID uuid.UUID, asOf *time.Time) ([]ledger.BankTransaction, error) {
	var txnModels []models.BankTransactionModel
	query := r.db.WithContext(ctx).
		Where("bank_account_id = ? AND reconciled_at IS NULL", bankAccountID)
	if asOf != nil {
		query = query.Where("date <= ?", *asOf)
	}
	if err := query.Order(registerOrder).Find(&txnModels).Error; err != nil {
		return nil, err
	}
	txns := make([]ledger.BankTransaction, len(txnModels))
	for i := range txnModels {
		txns[i] = *txnModels[i].ToDomain()
	}
	return txns, nil
}

// Save saves a transaction. On insert the database assigns the sequence,
// which is copied back so recompute ranges can use it immediately.
func (r *GormBankTransactionRepository) Save(ctx context.Context, txn *ledger.BankTransaction) error {
	model := models.BankTransactionModelFromDomain(txn)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	txn.Sequence = model.Sequence
	return nil
}

// SaveAll saves multiple transactions in one batch
func (r *GormBankTransactionRepository) SaveAll(ctx context.Context, txns []*ledger.BankTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	txnModels := make([]*models.BankTransactionModel, len(txns))
	for i, t := range txns {
		txnModels[i] = models.BankTransactionModelFromDomain(t)
	}
	if err := r.db.WithContext(ctx).Save(txnModels).Error; err != nil {
		return err
	}
	for i := range txns {
		txns[i].Sequence = txnModels[i].Sequence
	}
	return nil
}

// Delete removes a transaction
func (r *GormBankTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BankTransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options without pagination or ordering
func (r *GormBankTransactionRepository) applyFilter(query *gorm.DB, filter ledger.BankTransactionFilter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.UnreconciledOnly {
		query = query.Where("reconciled_at IS NULL")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("description LIKE ? OR reference_number LIKE ?", pattern, pattern)
	}
	return query
}

func toDomainSlice(txnModels []models.BankTransactionModel) []*ledger.BankTransaction {
	txns := make([]*ledger.BankTransaction, len(txnModels))
	for i := range txnModels {
		txns[i] = txnModels[i].ToDomain()
	}
	return txns
}

// Ensure GormBankTransactionRepository implements BankTransactionRepository
var _ ledger.BankTransactionRepository = (*GormBankTransactionRepository)(nil)
