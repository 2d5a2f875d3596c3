package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChartAccountRepository is a mock implementation of ChartAccountRepository
type MockChartAccountRepository struct {
	mock.Mock
}

func (m *MockChartAccountRepository) FindByIDForEntity(ctx context.Context, entityID, id uuid.UUID) (*ledger.ChartAccount, error) {
	args := m.Called(ctx, entityID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ChartAccount), args.Error(1)
}

func (m *MockChartAccountRepository) FindByIDs(ctx context.Context, entityID uuid.UUID, ids []uuid.UUID) ([]ledger.ChartAccount, error) {
	args := m.Called(ctx, entityID, ids)
	return args.Get(0).([]ledger.ChartAccount), args.Error(1)
}

func (m *MockChartAccountRepository) FindByCode(ctx context.Context, entityID uuid.UUID, code string) (*ledger.ChartAccount, error) {
	args := m.Called(ctx, entityID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ChartAccount), args.Error(1)
}

func (m *MockChartAccountRepository) FindAllForEntity(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]ledger.ChartAccount, error) {
	args := m.Called(ctx, entityID, activeOnly)
	return args.Get(0).([]ledger.ChartAccount), args.Error(1)
}

func (m *MockChartAccountRepository) FindByBankAccount(ctx context.Context, entityID, bankAccountID uuid.UUID) (*ledger.ChartAccount, error) {
	args := m.Called(ctx, entityID, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ChartAccount), args.Error(1)
}

func (m *MockChartAccountRepository) ExistsByCode(ctx context.Context, entityID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, entityID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockChartAccountRepository) HasPostedLines(ctx context.Context, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChartAccountRepository) SumPostedLines(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockChartAccountRepository) Save(ctx context.Context, account *ledger.ChartAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockChartAccountRepository) SaveAll(ctx context.Context, accounts []*ledger.ChartAccount) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

func TestChartAccountServiceCreateAccount(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	t.Run("creates an account", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		repo.On("ExistsByCode", ctx, entityID, "1010").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.ChartAccount")).Return(nil)

		resp, err := service.CreateAccount(ctx, entityID, CreateChartAccountRequest{
			Code: "1010",
			Name: "Operating Checking",
			Type: "ASSET",
		})
		require.NoError(t, err)
		assert.Equal(t, "1010", resp.Code)
		assert.Equal(t, ledger.AccountTypeAsset, resp.Type)
		assert.True(t, resp.IsActive)
		assert.True(t, resp.Balance.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		repo.On("ExistsByCode", ctx, entityID, "1010").Return(true, nil)

		_, err := service.CreateAccount(ctx, entityID, CreateChartAccountRequest{
			Code: "1010",
			Name: "Operating Checking",
			Type: "ASSET",
		})
		require.Error(t, err)
		assert.Equal(t, "DUPLICATE_ACCOUNT_CODE", domainCode(t, err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("creates a child under an active parent", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		parent, err := ledger.NewChartAccount(entityID, "1000", "Current Assets", ledger.AccountTypeAsset, nil)
		require.NoError(t, err)

		repo.On("ExistsByCode", ctx, entityID, "1010").Return(false, nil)
		repo.On("FindByIDForEntity", ctx, entityID, parent.ID).Return(parent, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.ChartAccount")).Return(nil)

		parentID := parent.ID.String()
		resp, err := service.CreateAccount(ctx, entityID, CreateChartAccountRequest{
			Code:     "1010",
			Name:     "Operating Checking",
			Type:     "ASSET",
			ParentID: &parentID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.ParentID)
		assert.Equal(t, parent.ID, *resp.ParentID)
	})

	t.Run("rejects an inactive parent", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		parent, err := ledger.NewChartAccount(entityID, "1000", "Current Assets", ledger.AccountTypeAsset, nil)
		require.NoError(t, err)
		require.NoError(t, parent.Deactivate())

		repo.On("ExistsByCode", ctx, entityID, "1010").Return(false, nil)
		repo.On("FindByIDForEntity", ctx, entityID, parent.ID).Return(parent, nil)

		parentID := parent.ID.String()
		_, err = service.CreateAccount(ctx, entityID, CreateChartAccountRequest{
			Code:     "1010",
			Name:     "Operating Checking",
			Type:     "ASSET",
			ParentID: &parentID,
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_PARENT", domainCode(t, err))
	})

	t.Run("rejects a missing parent", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		missingID := uuid.New()
		repo.On("ExistsByCode", ctx, entityID, "1010").Return(false, nil)
		repo.On("FindByIDForEntity", ctx, entityID, missingID).Return(nil, shared.ErrNotFound)

		parentID := missingID.String()
		_, err := service.CreateAccount(ctx, entityID, CreateChartAccountRequest{
			Code:     "1010",
			Name:     "Operating Checking",
			Type:     "ASSET",
			ParentID: &parentID,
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_PARENT", domainCode(t, err))
	})

	t.Run("rejects a malformed parent ID", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		repo.On("ExistsByCode", ctx, entityID, "1010").Return(false, nil)

		parentID := "not-a-uuid"
		_, err := service.CreateAccount(ctx, entityID, CreateChartAccountRequest{
			Code:     "1010",
			Name:     "Operating Checking",
			Type:     "ASSET",
			ParentID: &parentID,
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_PARENT", domainCode(t, err))
	})
}

func TestChartAccountServiceListAccounts(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	t.Run("nests children under parents", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		parent, err := ledger.NewChartAccount(entityID, "1000", "Current Assets", ledger.AccountTypeAsset, nil)
		require.NoError(t, err)
		child, err := ledger.NewChartAccount(entityID, "1010", "Operating Checking", ledger.AccountTypeAsset, &parent.ID)
		require.NoError(t, err)
		other, err := ledger.NewChartAccount(entityID, "4000", "Rental Income", ledger.AccountTypeRevenue, nil)
		require.NoError(t, err)

		repo.On("FindAllForEntity", ctx, entityID, false).
			Return([]ledger.ChartAccount{*parent, *child, *other}, nil)

		roots, err := service.ListAccounts(ctx, entityID, false)
		require.NoError(t, err)
		require.Len(t, roots, 2)

		byCode := make(map[string]ChartAccountResponse, len(roots))
		for _, r := range roots {
			byCode[r.Code] = r
		}
		require.Contains(t, byCode, "1000")
		require.Contains(t, byCode, "4000")
		require.Len(t, byCode["1000"].Children, 1)
		assert.Equal(t, "1010", byCode["1000"].Children[0].Code)
	})

	t.Run("orphaned children surface as roots", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		hiddenParentID := uuid.New()
		child, err := ledger.NewChartAccount(entityID, "1010", "Operating Checking", ledger.AccountTypeAsset, &hiddenParentID)
		require.NoError(t, err)

		repo.On("FindAllForEntity", ctx, entityID, true).
			Return([]ledger.ChartAccount{*child}, nil)

		roots, err := service.ListAccounts(ctx, entityID, true)
		require.NoError(t, err)
		require.Len(t, roots, 1)
		assert.Equal(t, "1010", roots[0].Code)
	})
}

func TestChartAccountServiceDeactivateAccount(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	t.Run("deactivates and saves", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		account, err := ledger.NewChartAccount(entityID, "1010", "Operating Checking", ledger.AccountTypeAsset, nil)
		require.NoError(t, err)

		repo.On("FindByIDForEntity", ctx, entityID, account.ID).Return(account, nil)
		repo.On("Save", ctx, account).Return(nil)

		resp, err := service.DeactivateAccount(ctx, entityID, account.ID)
		require.NoError(t, err)
		assert.False(t, resp.IsActive)
		repo.AssertExpectations(t)
	})

	t.Run("fails when already inactive", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		account, err := ledger.NewChartAccount(entityID, "1010", "Operating Checking", ledger.AccountTypeAsset, nil)
		require.NoError(t, err)
		require.NoError(t, account.Deactivate())

		repo.On("FindByIDForEntity", ctx, entityID, account.ID).Return(account, nil)

		_, err = service.DeactivateAccount(ctx, entityID, account.ID)
		require.Error(t, err)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestChartAccountServiceRecomputeBalance(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	t.Run("debit-normal account sums debits minus credits", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		account, err := ledger.NewChartAccount(entityID, "1010", "Operating Checking", ledger.AccountTypeAsset, nil)
		require.NoError(t, err)
		account.SetBalance(decimal.NewFromInt(-999))

		repo.On("FindByIDForEntity", ctx, entityID, account.ID).Return(account, nil)
		repo.On("SumPostedLines", ctx, account.ID).Return(decimal.NewFromInt(500), decimal.NewFromInt(200), nil)
		repo.On("Save", ctx, account).Return(nil)

		resp, err := service.RecomputeBalance(ctx, entityID, account.ID)
		require.NoError(t, err)
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(300)))
		repo.AssertExpectations(t)
	})

	t.Run("credit-normal account sums credits minus debits", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		account, err := ledger.NewChartAccount(entityID, "4000", "Rental Income", ledger.AccountTypeRevenue, nil)
		require.NoError(t, err)

		repo.On("FindByIDForEntity", ctx, entityID, account.ID).Return(account, nil)
		repo.On("SumPostedLines", ctx, account.ID).Return(decimal.NewFromInt(200), decimal.NewFromInt(500), nil)
		repo.On("Save", ctx, account).Return(nil)

		resp, err := service.RecomputeBalance(ctx, entityID, account.ID)
		require.NoError(t, err)
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(300)))
	})
}

func TestChartAccountServiceGetAccount(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	t.Run("returns the account", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		account, err := ledger.NewChartAccount(entityID, "1010", "Operating Checking", ledger.AccountTypeAsset, nil)
		require.NoError(t, err)
		repo.On("FindByIDForEntity", ctx, entityID, account.ID).Return(account, nil)

		resp, err := service.GetAccount(ctx, entityID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.ID, resp.ID)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockChartAccountRepository)
		service := NewChartAccountService(repo, nil)

		id := uuid.New()
		repo.On("FindByIDForEntity", ctx, entityID, id).Return(nil, shared.ErrNotFound)

		_, err := service.GetAccount(ctx, entityID, id)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})
}
