package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/ledger"
	"github.com/ledgerbooks/backend/internal/domain/shared"
	"github.com/ledgerbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ChartAccountService provides application-level chart-of-accounts operations
type ChartAccountService struct {
	accounts ledger.ChartAccountRepository
	events   shared.EventPublisher
}

// NewChartAccountService creates a new ChartAccountService. The event
// publisher may be nil; account lifecycle events are then dropped.
func NewChartAccountService(accounts ledger.ChartAccountRepository, events shared.EventPublisher) *ChartAccountService {
	return &ChartAccountService{accounts: accounts, events: events}
}

// CreateChartAccountRequest represents a request to create a chart account
type CreateChartAccountRequest struct {
	Code        string  `json:"code" binding:"required,max=20"`
	Name        string  `json:"name" binding:"required,max=200"`
	Type        string  `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentID    *string `json:"parent_id,omitempty" binding:"omitempty,uuid"`
	Description string  `json:"description,omitempty" binding:"max=500"`
}

// ChartAccountResponse represents a chart account in API responses
type ChartAccountResponse struct {
	ID            uuid.UUID              `json:"id"`
	EntityID      uuid.UUID              `json:"entity_id"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Type          ledger.AccountType     `json:"type"`
	ParentID      *uuid.UUID             `json:"parent_id,omitempty"`
	IsActive      bool                   `json:"is_active"`
	BankAccountID *uuid.UUID             `json:"bank_account_id,omitempty"`
	Balance       decimal.Decimal        `json:"balance"`
	Description   string                 `json:"description,omitempty"`
	Children      []ChartAccountResponse `json:"children,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func toChartAccountResponse(a *ledger.ChartAccount) ChartAccountResponse {
	return ChartAccountResponse{
		ID:            a.ID,
		EntityID:      a.EntityID,
		Code:          a.Code,
		Name:          a.Name,
		Type:          a.Type,
		ParentID:      a.ParentID,
		IsActive:      a.IsActive,
		BankAccountID: a.BankAccountID,
		Balance:       a.Balance,
		Description:   a.Description,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// CreateAccount creates a chart account after checking code uniqueness and
// parent validity within the entity.
func (s *ChartAccountService) CreateAccount(ctx context.Context, entityID uuid.UUID, req CreateChartAccountRequest) (*ChartAccountResponse, error) {
	exists, err := s.accounts.ExistsByCode(ctx, entityID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_ACCOUNT_CODE",
			"An account with this code already exists for the entity")
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		pid, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent ID is not a valid UUID")
		}
		parent, err := s.accounts.FindByIDForEntity(ctx, entityID, pid)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent account does not exist for this entity")
		}
		if !parent.IsActive {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent account is inactive")
		}
		if err := s.checkNoCycle(ctx, entityID, pid); err != nil {
			return nil, err
		}
		parentID = &pid
	}

	account, err := ledger.NewChartAccount(entityID, req.Code, req.Name, ledger.AccountType(req.Type), parentID)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		account.Description = req.Description
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, account)

	resp := toChartAccountResponse(account)
	return &resp, nil
}

// checkNoCycle walks the parent chain upwards and fails if it does not
// terminate. Bounded so a corrupted chain cannot loop forever.
func (s *ChartAccountService) checkNoCycle(ctx context.Context, entityID, parentID uuid.UUID) error {
	const maxDepth = 100
	seen := map[uuid.UUID]struct{}{}
	current := parentID
	for range maxDepth {
		if _, ok := seen[current]; ok {
			return shared.NewDomainError("ACCOUNT_CYCLE", "Parent assignment would create a cycle in the account tree")
		}
		seen[current] = struct{}{}

		node, err := s.accounts.FindByIDForEntity(ctx, entityID, current)
		if err != nil {
			return err
		}
		if node.ParentID == nil {
			return nil
		}
		current = *node.ParentID
	}
	return shared.NewDomainError("ACCOUNT_CYCLE", "Account tree exceeds maximum depth")
}

// GetAccount returns one account by ID
func (s *ChartAccountService) GetAccount(ctx context.Context, entityID, id uuid.UUID) (*ChartAccountResponse, error) {
	account, err := s.accounts.FindByIDForEntity(ctx, entityID, id)
	if err != nil {
		return nil, err
	}
	resp := toChartAccountResponse(account)
	return &resp, nil
}

// ListAccounts returns the account tree for an entity with derived balances.
// Roots are ordered by code; children are nested under their parents.
func (s *ChartAccountService) ListAccounts(ctx context.Context, entityID uuid.UUID, activeOnly bool) ([]ChartAccountResponse, error) {
	accounts, err := s.accounts.FindAllForEntity(ctx, entityID, activeOnly)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*ChartAccountResponse, len(accounts))
	order := make([]uuid.UUID, 0, len(accounts))
	for i := range accounts {
		resp := toChartAccountResponse(&accounts[i])
		nodes[resp.ID] = &resp
		order = append(order, resp.ID)
	}

	childIDs := make(map[uuid.UUID][]uuid.UUID)
	for _, id := range order {
		node := nodes[id]
		if node.ParentID != nil {
			if _, ok := nodes[*node.ParentID]; ok {
				childIDs[*node.ParentID] = append(childIDs[*node.ParentID], id)
			}
		}
	}

	var build func(id uuid.UUID) ChartAccountResponse
	build = func(id uuid.UUID) ChartAccountResponse {
		node := *nodes[id]
		for _, cid := range childIDs[id] {
			node.Children = append(node.Children, build(cid))
		}
		return node
	}

	// An account whose parent was filtered out (inactive) surfaces as a
	// root rather than disappearing from the listing.
	roots := make([]ChartAccountResponse, 0, len(order))
	for _, id := range order {
		node := nodes[id]
		if node.ParentID == nil {
			roots = append(roots, build(id))
		} else if _, ok := nodes[*node.ParentID]; !ok {
			roots = append(roots, build(id))
		}
	}

	return roots, nil
}

// DeactivateAccount hides an account from future selection. History is
// preserved: accounts referenced by posted lines are never removed.
func (s *ChartAccountService) DeactivateAccount(ctx context.Context, entityID, id uuid.UUID) (*ChartAccountResponse, error) {
	account, err := s.accounts.FindByIDForEntity(ctx, entityID, id)
	if err != nil {
		return nil, err
	}
	if err := account.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, account)
	resp := toChartAccountResponse(account)
	return &resp, nil
}

// BalanceOf returns the incrementally maintained balance for an account
func (s *ChartAccountService) BalanceOf(ctx context.Context, entityID, id uuid.UUID) (valueobject.Money, error) {
	account, err := s.accounts.FindByIDForEntity(ctx, entityID, id)
	if err != nil {
		return valueobject.ZeroUSD(), err
	}
	return account.GetBalanceMoney(), nil
}

// RecomputeBalance re-derives the account balance by summing every posted
// line from scratch and rewrites the incremental cache. Repair operation;
// the two computations must always agree.
func (s *ChartAccountService) RecomputeBalance(ctx context.Context, entityID, id uuid.UUID) (*ChartAccountResponse, error) {
	account, err := s.accounts.FindByIDForEntity(ctx, entityID, id)
	if err != nil {
		return nil, err
	}

	debits, credits, err := s.accounts.SumPostedLines(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	balance := debits.Sub(credits)
	if account.Type.NormalBalance() == ledger.EntryTypeCredit {
		balance = credits.Sub(debits)
	}

	account.SetBalance(balance)
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	resp := toChartAccountResponse(account)
	return &resp, nil
}
