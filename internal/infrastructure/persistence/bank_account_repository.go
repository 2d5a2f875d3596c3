package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/ledgerbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormBankAccountRepository) WithTx(tx *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: tx}
}

// FindByIDForEntity finds a bank account by ID within an entity
func (r *GormBankAccountRepository) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.BankAccount, error) {
	var model models.BankAccountModel
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

// FindAllForEntity lists bank accounts for an entity
func (r *GormBankAccountRepository) FindAllForEntity(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]ledger.BankAccount, error) {
	var accountModels []models.BankAccountModel
	query := r.db.WithContext(ctx).Where("entity_id = ?", entityID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("bank_name ASC, account_name ASC").Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.BankAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Save saves a bank account (creates or updates)
func (r *GormBankAccountRepository) Save(ctx context.Context, account *ledger.BankAccount) error {
	model := models.BankAccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormBankAccountRepository implements BankAccountRepository
var _ ledger.BankAccountRepository = (*GormBankAccountRepository)(nil)
