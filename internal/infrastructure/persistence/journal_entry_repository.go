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

// GormJournalEntryRepository implements JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormJournalEntryRepository) WithTx(tx *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: tx}
}

// FindByIDForEntity loads an entry with all its lines
func (r *GormJournalEntryRepository) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("entity_id = ? AND id = ?", entityID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForEntity lists entries with lines for an entity
func (r *GormJournalEntryRepository) FindAllForEntity(ctx context.Context, entityID uuid.UUID, filter ledger.JournalEntryFilter) ([]ledger.JournalEntry, error) {
	var entryModels []models.JournalEntryModel

	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).Where("journal_entries.entity_id = ?", entityID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, JournalEntrySortFields, "transaction_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order("journal_entries." + orderBy + " " + orderDir).Order("journal_entries.created_at " + orderDir)

	if err := query.Preload("Lines").Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]ledger.JournalEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// CountForEntity counts entries matching the filter
func (r *GormJournalEntryRepository) CountForEntity(ctx context.Context, entityID uuid.UUID, filter ledger.JournalEntryFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).Where("journal_entries.entity_id = ?", entityID),
		filter,
	)
	if err := query.Distinct("journal_entries.id").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates a new entry together with all of its lines
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *ledger.JournalEntry) error {
	model := models.JournalEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// UpdateMetadata persists metadata-only changes to a posted entry.
// Lines are immutable after posting and are never touched here.
func (r *GormJournalEntryRepository) UpdateMetadata(ctx context.Context, entry *ledger.JournalEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"description":      entry.Description,
			"reference_number": entry.ReferenceNumber,
			"updated_at":       entry.UpdatedAt,
			"version":          entry.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an entry and all of its lines
func (r *GormJournalEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.JournalLineModel{}, "journal_entry_id = ?", id).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&models.JournalEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options without pagination or ordering
func (r *GormJournalEntryRepository) applyFilter(query *gorm.DB, filter ledger.JournalEntryFilter) *gorm.DB {
	if filter.FromDate != nil {
		query = query.Where("journal_entries.transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("journal_entries.transaction_date <= ?", *filter.ToDate)
	}
	if filter.ChartAccountID != nil {
		query = query.
			Joins("JOIN journal_lines ON journal_lines.journal_entry_id = journal_entries.id").
			Where("journal_lines.chart_account_id = ?", *filter.ChartAccountID).
			Distinct("journal_entries.*")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("journal_entries.description LIKE ? OR journal_entries.reference_number LIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormJournalEntryRepository implements JournalEntryRepository
var _ ledger.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
