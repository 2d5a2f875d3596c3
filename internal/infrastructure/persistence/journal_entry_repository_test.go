package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJournalEntry(t *testing.T, repo *GormJournalEntryRepository, entityID, debitAccount, creditAccount uuid.UUID, date time.Time, amount int64, description, reference string) *ledger.JournalEntry {
	t.Helper()
	debit, err := ledger.NewJournalLine(debitAccount, ledger.EntryTypeDebit, decimal.NewFromInt(amount), "")
	require.NoError(t, err)
	credit, err := ledger.NewJournalLine(creditAccount, ledger.EntryTypeCredit, decimal.NewFromInt(amount), "")
	require.NoError(t, err)
	entry, err := ledger.NewJournalEntry(entityID, date, description, reference, []*ledger.JournalLine{debit, credit})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestJournalEntryRepositorySaveAndFind(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormJournalEntryRepository(db)
	ctx := context.Background()
	entityID := uuid.New()
	cash := uuid.New()
	income := uuid.New()

	t.Run("round-trips an entry with its lines", func(t *testing.T) {
		entry := seedJournalEntry(t, repo, entityID, cash, income, day(15), 1200, "March rent", "RENT-03")

		found, err := repo.FindByIDForEntity(ctx, entityID, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "March rent", found.Description)
		assert.Equal(t, "RENT-03", found.ReferenceNumber)
		require.Len(t, found.Lines, 2)
		assert.True(t, found.IsBalanced())
		for _, line := range found.Lines {
			assert.Equal(t, entry.ID, line.JournalEntryID)
		}
	})

	t.Run("scopes lookups to the entity", func(t *testing.T) {
		entry := seedJournalEntry(t, repo, entityID, cash, income, day(16), 100, "Scoped", "")
		_, err := repo.FindByIDForEntity(ctx, uuid.New(), entry.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestJournalEntryRepositoryFindAllForEntity(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormJournalEntryRepository(db)
	ctx := context.Background()
	entityID := uuid.New()
	cash := uuid.New()
	income := uuid.New()
	deposits := uuid.New()

	seedJournalEntry(t, repo, entityID, cash, income, day(1), 1000, "April rent", "RENT-04")
	seedJournalEntry(t, repo, entityID, cash, deposits, day(10), 500, "Security deposit", "DEP-01")
	seedJournalEntry(t, repo, entityID, cash, income, day(20), 1000, "May rent", "RENT-05")
	seedJournalEntry(t, repo, uuid.New(), cash, income, day(1), 999, "Other entity", "")

	t.Run("lists entries with lines", func(t *testing.T) {
		entries, err := repo.FindAllForEntity(ctx, entityID, ledger.JournalEntryFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for _, e := range entries {
			assert.Len(t, e.Lines, 2)
		}
	})

	t.Run("defaults to newest first", func(t *testing.T) {
		entries, err := repo.FindAllForEntity(ctx, entityID, ledger.JournalEntryFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "May rent", entries[0].Description)
		assert.Equal(t, "April rent", entries[2].Description)
	})

	t.Run("filters by date range", func(t *testing.T) {
		from := day(5)
		to := day(15)
		entries, err := repo.FindAllForEntity(ctx, entityID, ledger.JournalEntryFilter{FromDate: &from, ToDate: &to})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Security deposit", entries[0].Description)
	})

	t.Run("filters by account", func(t *testing.T) {
		entries, err := repo.FindAllForEntity(ctx, entityID, ledger.JournalEntryFilter{ChartAccountID: &deposits})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Security deposit", entries[0].Description)

		entries, err = repo.FindAllForEntity(ctx, entityID, ledger.JournalEntryFilter{ChartAccountID: &cash})
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("searches description and reference", func(t *testing.T) {
		filter := ledger.JournalEntryFilter{}
		filter.Search = "rent"
		entries, err := repo.FindAllForEntity(ctx, entityID, filter)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		filter.Search = "DEP-01"
		entries, err = repo.FindAllForEntity(ctx, entityID, filter)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := ledger.JournalEntryFilter{}
		filter.Page = 1
		filter.PageSize = 2
		entries, err := repo.FindAllForEntity(ctx, entityID, filter)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		filter.Page = 2
		entries, err = repo.FindAllForEntity(ctx, entityID, filter)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("counts with filters", func(t *testing.T) {
		count, err := repo.CountForEntity(ctx, entityID, ledger.JournalEntryFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = repo.CountForEntity(ctx, entityID, ledger.JournalEntryFilter{ChartAccountID: &deposits})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestJournalEntryRepositoryUpdateMetadata(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormJournalEntryRepository(db)
	ctx := context.Background()
	entityID := uuid.New()

	entry := seedJournalEntry(t, repo, entityID, uuid.New(), uuid.New(), day(1), 100, "Original", "REF-1")
	entry.UpdateMetadata("Corrected", "REF-2")
	require.NoError(t, repo.UpdateMetadata(ctx, entry))

	found, err := repo.FindByIDForEntity(ctx, entityID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corrected", found.Description)
	assert.Equal(t, "REF-2", found.ReferenceNumber)
	require.Len(t, found.Lines, 2)

	missing, err := ledger.NewJournalEntry(entityID, day(1), "Never saved", "", []*ledger.JournalLine{
		mustTestLine(t, uuid.New(), ledger.EntryTypeDebit, 50),
		mustTestLine(t, uuid.New(), ledger.EntryTypeCredit, 50),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.UpdateMetadata(ctx, missing), shared.ErrNotFound)
}

func mustTestLine(t *testing.T, accountID uuid.UUID, entryType ledger.EntryType, amount int64) *ledger.JournalLine {
	t.Helper()
	line, err := ledger.NewJournalLine(accountID, entryType, decimal.NewFromInt(amount), "")
	require.NoError(t, err)
	return line
}

func TestJournalEntryRepositoryDelete(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormJournalEntryRepository(db)
	ctx := context.Background()
	entityID := uuid.New()

	entry := seedJournalEntry(t, repo, entityID, uuid.New(), uuid.New(), day(1), 100, "Doomed", "")
	require.NoError(t, repo.Delete(ctx, entry.ID))

	_, err := repo.FindByIDForEntity(ctx, entityID, entry.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Lines go with the entry.
	var lineCount int64
	require.NoError(t, db.Model(&journalLineSQLite{}).Where("journal_entry_id = ?", entry.ID.String()).Count(&lineCount).Error)
	assert.Zero(t, lineCount)

	assert.ErrorIs(t, repo.Delete(ctx, entry.ID), shared.ErrNotFound)
}
