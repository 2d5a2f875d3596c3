package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func postingDate() time.Time {
	return time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
}

func TestLoggingEventPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewLoggingEventPublisher(zap.New(core))

	account, err := ledger.NewChartAccount(uuid.New(), "1010", "Operating Checking", ledger.AccountTypeAsset, nil)
	require.NoError(t, err)

	events := account.GetDomainEvents()
	require.NotEmpty(t, events)
	require.NoError(t, publisher.Publish(context.Background(), events...))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Domain event", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ChartAccountCreated", fields["event_type"])
	assert.Equal(t, account.ID.String(), fields["aggregate_id"])
	assert.Equal(t, account.EntityID.String(), fields["entity_id"])
}

func TestChartAccountServicePublishesEvents(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	t.Run("account creation", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		publisher := &fakeEventPublisher{}
		service := NewChartAccountService(repo, publisher)

		repo.On("ExistsByCode", ctx, entityID, "1010").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.ChartAccount")).Return(nil)

		_, err := service.CreateAccount(ctx, entityID, CreateChartAccountRequest{
			Code: "1010",
			Name: "Operating Checking",
			Type: "ASSET",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"ChartAccountCreated"}, publisher.eventTypes())
	})

	t.Run("account deactivation", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		publisher := &fakeEventPublisher{}
		service := NewChartAccountService(repo, publisher)

		account, err := ledger.NewChartAccount(entityID, "6000", "Repairs", ledger.AccountTypeExpense, nil)
		require.NoError(t, err)
		account.ClearDomainEvents()

		repo.On("FindByIDForEntity", ctx, entityID, account.ID).Return(account, nil)
		repo.On("Save", ctx, account).Return(nil)

		_, err = service.DeactivateAccount(ctx, entityID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"ChartAccountDeactivated"}, publisher.eventTypes())
		assert.Empty(t, account.GetDomainEvents())
	})
}

func TestJournalEntryServicePublishesEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("posting", func(t *testing.T) {
		env := newLockingEnv(t)
		publisher := &fakeEventPublisher{}
		service := NewJournalEntryService(env.store.uow, env.store.journalEntries, env.store.chartAccounts, env.store.bankTransactions, env.locks, publisher, zap.NewNop())

		_, err := service.PostEntry(ctx, env.entityID, PostEntryRequest{
			TransactionDate: postingDate(),
			Description:     "Rent receipt",
			Lines: []JournalLineInput{
				{ChartAccountID: env.cash.ID.String(), EntryType: "DEBIT", Amount: decimal.NewFromInt(500)},
				{ChartAccountID: env.income.ID.String(), EntryType: "CREDIT", Amount: decimal.NewFromInt(500)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"JournalEntryPosted"}, publisher.eventTypes())
	})

	t.Run("deletion", func(t *testing.T) {
		env := newLockingEnv(t)
		publisher := &fakeEventPublisher{}
		service := NewJournalEntryService(env.store.uow, env.store.journalEntries, env.store.chartAccounts, env.store.bankTransactions, env.locks, publisher, zap.NewNop())

		entry, err := service.PostEntry(ctx, env.entityID, PostEntryRequest{
			TransactionDate: postingDate(),
			Description:     "Rent receipt",
			Lines: []JournalLineInput{
				{ChartAccountID: env.cash.ID.String(), EntryType: "DEBIT", Amount: decimal.NewFromInt(500)},
				{ChartAccountID: env.income.ID.String(), EntryType: "CREDIT", Amount: decimal.NewFromInt(500)},
			},
		})
		require.NoError(t, err)

		require.NoError(t, service.DeleteEntry(ctx, env.entityID, entry.ID))
		assert.Equal(t, []string{"JournalEntryPosted", "JournalEntryDeleted"}, publisher.eventTypes())
	})
}

func TestBankRegisterServicePublishesEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("bank account with linked chart account", func(t *testing.T) {
		store := newFakeStore()
		publisher := &fakeEventPublisher{}
		service := NewBankRegisterService(store.uow, store.bankAccounts, store.bankTransactions, NewRegisterLocks(), publisher, zap.NewNop())

		_, err := service.CreateBankAccount(ctx, uuid.New(), CreateBankAccountRequest{
			BankName:         "First National",
			AccountName:      "Operating",
			AccountNumber:    "****1234",
			Type:             "CHECKING",
			OpeningBalance:   decimal.NewFromInt(5000),
			ChartAccountCode: "1010",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"BankAccountCreated", "ChartAccountCreated"}, publisher.eventTypes())
	})

	t.Run("bank account alone", func(t *testing.T) {
		store := newFakeStore()
		publisher := &fakeEventPublisher{}
		service := NewBankRegisterService(store.uow, store.bankAccounts, store.bankTransactions, NewRegisterLocks(), publisher, zap.NewNop())

		_, err := service.CreateBankAccount(ctx, uuid.New(), CreateBankAccountRequest{
			BankName:       "First National",
			AccountName:    "Operating",
			AccountNumber:  "****1234",
			Type:           "CHECKING",
			OpeningBalance: decimal.NewFromInt(5000),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"BankAccountCreated"}, publisher.eventTypes())
	})
}
