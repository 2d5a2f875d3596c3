package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/ledgerbooks/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormChartAccountRepository implements ChartAccountRepository using GORM
type GormChartAccountRepository struct {
	db *gorm.DB
}

// NewGormChartAccountRepository creates a new GormChartAccountRepository
func NewGormChartAccountRepository(db *gorm.DB) *GormChartAccountRepository {
	return &GormChartAccountRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormChartAccountRepository) WithTx(tx *gorm.DB) *GormChartAccountRepository {
	return &GormChartAccountRepository{db: tx}
}

// FindByIDForEntity finds an account by ID within an entity
func (r *GormChartAccountRepository) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.ChartAccount, error) {
	var model models.ChartAccountModel
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

// FindByIDs finds accounts by IDs within an entity
func (r *GormChartAccountRepository) FindByIDs(ctx context.Context, entityID uuid.UUID, ids []uuid.UUID) ([]ledger.ChartAccount, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var accountModels []models.ChartAccountModel
	if err := r.db.WithContext(ctx).
		Where("entity_id = ? AND id IN ?", entityID, ids).
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.ChartAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// FindByCode finds an account by its code within an entity
func (r *GormChartAccountRepository) FindByCode(ctx context.Context, entityID uuid.UUID, code string) (*ledger.ChartAccount, error) {
	var model models.ChartAccountModel
	if err := r.db.WithContext(ctx).
		Where("entity_id = ? AND code = ?", entityID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForEntity lists accounts for an entity ordered by code
func (r *GormChartAccountRepository) FindAllForEntity(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]ledger.ChartAccount, error) {
	var accountModels []models.ChartAccountModel
	query := r.db.WithContext(ctx).Where("entity_id = ?", entityID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("code ASC").Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.ChartAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// FindByBankAccount finds the chart account linked to a bank account
func (r *GormChartAccountRepository) FindByBankAccount(ctx context.Context, entityID, bankAccountID uuid.UUID) (*ledger.ChartAccount, error) {
	var model models.ChartAccountModel
	if err := r.db.WithContext(ctx).
		Where("entity_id = ? AND bank_account_id = ?", entityID, bankAccountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks code uniqueness within an entity
func (r *GormChartAccountRepository) ExistsByCode(ctx context.Context, entityID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChartAccountModel{}).
		Where("entity_id = ? AND code = ?", entityID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasPostedLines reports whether any journal line references the account
func (r *GormChartAccountRepository) HasPostedLines(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.JournalLineModel{}).
		Where("chart_account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumPostedLines sums all posted line amounts against the account,
// returned as (debits, credits)
func (r *GormChartAccountRepository) SumPostedLines(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var result struct {
		Debits  decimal.Decimal
		Credits decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.JournalLineModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE 0 END), 0) as debits, "+
				"COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE 0 END), 0) as credits",
			ledger.EntryTypeDebit, ledger.EntryTypeCredit).
		Where("chart_account_id = ?", accountID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.Debits, result.Credits, nil
}

// Save saves an account (creates or updates)
func (r *GormChartAccountRepository) Save(ctx context.Context, account *ledger.ChartAccount) error {
	model := models.ChartAccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll saves multiple accounts in one batch
func (r *GormChartAccountRepository) SaveAll(ctx context.Context, accounts []*ledger.ChartAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	accountModels := make([]*models.ChartAccountModel, len(accounts))
	for i, a := range accounts {
		accountModels[i] = models.ChartAccountModelFromDomain(a)
	}
	return r.db.WithContext(ctx).Save(accountModels).Error
}

// Ensure GormChartAccountRepository implements ChartAccountRepository
var _ ledger.ChartAccountRepository = (*GormChartAccountRepository)(nil)
