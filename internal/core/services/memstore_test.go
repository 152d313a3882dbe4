package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// memState is the full content of the in-memory store.
type memState struct {
	accounts     map[string]domain.Account
	categories   map[string]domain.Category
	transactions map[string]domain.Transaction
	budgets      map[string]domain.Budget
	allocations  map[string]domain.BudgetCategory
}

func (s memState) clone() memState {
	c := memState{
		accounts:     make(map[string]domain.Account, len(s.accounts)),
		categories:   make(map[string]domain.Category, len(s.categories)),
		transactions: make(map[string]domain.Transaction, len(s.transactions)),
		budgets:      make(map[string]domain.Budget, len(s.budgets)),
		allocations:  make(map[string]domain.BudgetCategory, len(s.allocations)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.budgets {
		c.budgets[k] = v
	}
	for k, v := range s.allocations {
		c.allocations[k] = v
	}
	return c
}

// memStore is an in-memory UnitOfWork. WithinTx runs units one at a time and restores a
// snapshot when the unit fails, so a failed operation leaves no partial effects.
type memStore struct {
	mu    sync.Mutex
	state memState

	// commitErr, when set, makes the next commit fail after fn succeeded.
	commitErr error
	// txCount counts units of work started.
	txCount int
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		accounts:     map[string]domain.Account{},
		categories:   map[string]domain.Category{},
		transactions: map[string]domain.Transaction{},
		budgets:      map[string]domain.Budget{},
		allocations:  map[string]domain.BudgetCategory{},
	}}
}

var _ portsrepo.UnitOfWork = (*memStore)(nil)

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	snapshot := m.state.clone()
	if err := fn(ctx, memTx{m}); err != nil {
		m.state = snapshot
		return err
	}
	if m.commitErr != nil {
		err := m.commitErr
		m.commitErr = nil
		m.state = snapshot
		return apperrors.NewPersistenceError("failed to commit transaction", err)
	}
	return nil
}

func (m *memStore) Close() {}

func (m *memStore) Accounts() portsrepo.AccountRepositoryFacade         { return memAccounts{m} }
func (m *memStore) Categories() portsrepo.CategoryRepositoryFacade       { return memCategories{m} }
func (m *memStore) Transactions() portsrepo.TransactionRepositoryFacade { return memTransactions{m} }
func (m *memStore) Budgets() portsrepo.BudgetRepositoryFacade           { return memBudgets{m} }

// memTx is the Store handed to a unit of work. The mutex is already held.
type memTx struct{ m *memStore }

func (t memTx) Accounts() portsrepo.AccountRepositoryFacade         { return memAccounts{t.m} }
func (t memTx) Categories() portsrepo.CategoryRepositoryFacade       { return memCategories{t.m} }
func (t memTx) Transactions() portsrepo.TransactionRepositoryFacade { return memTransactions{t.m} }
func (t memTx) Budgets() portsrepo.BudgetRepositoryFacade           { return memBudgets{t.m} }

// --- accounts ---

type memAccounts struct{ m *memStore }

func (r memAccounts) FindAccountByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.m.state.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
	}
	return &a, nil
}

func (r memAccounts) ListAccounts(_ context.Context, userID string, limit, offset int) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range r.m.state.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return []domain.Account{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memAccounts) IsAccountReferenced(_ context.Context, id string) (bool, error) {
	for _, t := range r.m.state.transactions {
		if deref(t.SourceAccountID) == id || deref(t.DestinationAccountID) == id {
			return true, nil
		}
	}
	return false, nil
}

func (r memAccounts) SaveAccount(_ context.Context, a domain.Account) error {
	if _, ok := r.m.state.accounts[a.AccountID]; ok {
		return apperrors.ErrDuplicate
	}
	r.m.state.accounts[a.AccountID] = a
	return nil
}

func (r memAccounts) UpdateAccount(_ context.Context, a domain.Account) error {
	cur, ok := r.m.state.accounts[a.AccountID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	cur.Name = a.Name
	cur.AuditFields = a.AuditFields
	r.m.state.accounts[a.AccountID] = cur
	return nil
}

func (r memAccounts) DeactivateAccount(_ context.Context, id, userID string, now time.Time) error {
	a, ok := r.m.state.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	if !a.Balance.IsZero() {
		return apperrors.ErrValidation
	}
	a.Status = domain.AccountInactive
	a.Touch(userID, now)
	r.m.state.accounts[id] = a
	return nil
}

func (r memAccounts) ApplyBalanceDelta(_ context.Context, id string, delta decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error) {
	a, ok := r.m.state.accounts[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
	}
	if !a.IsActive() {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, id)
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, id)
	}
	a.Balance = next
	a.Touch(userID, now)
	r.m.state.accounts[id] = a
	return next, nil
}

// --- categories ---

type memCategories struct{ m *memStore }

func (r memCategories) FindCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	c, ok := r.m.state.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, id)
	}
	return &c, nil
}

func (r memCategories) ListCategories(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range r.m.state.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) IsCategoryReferenced(_ context.Context, id string) (bool, error) {
	for _, t := range r.m.state.transactions {
		if t.CategoryID == id {
			return true, nil
		}
	}
	for _, bc := range r.m.state.allocations {
		if bc.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r memCategories) SaveCategory(_ context.Context, c domain.Category) error {
	r.m.state.categories[c.CategoryID] = c
	return nil
}

func (r memCategories) UpdateCategory(_ context.Context, c domain.Category) error {
	if _, ok := r.m.state.categories[c.CategoryID]; !ok {
		return apperrors.ErrCategoryNotFound
	}
	r.m.state.categories[c.CategoryID] = c
	return nil
}

// --- transactions ---

type memTransactions struct{ m *memStore }

func (r memTransactions) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	t, ok := r.m.state.transactions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, id)
	}
	return &t, nil
}

func (r memTransactions) FindTransactionForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.FindTransactionByID(ctx, id)
}

func (r memTransactions) ListTransactions(_ context.Context, f portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range r.m.state.transactions {
		if t.UserID != f.UserID {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if f.AccountID != "" && !contains(t.AccountIDs(), f.AccountID) {
			continue
		}
		if f.From != nil && t.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && t.Date.After(*f.To) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return after(out[i], out[j]) })

	if f.AfterDate != nil {
		cursor := domain.Transaction{Date: *f.AfterDate, TransactionID: f.AfterID}
		cursor.CreatedAt = *f.AfterCreatedAt
		idx := sort.Search(len(out), func(i int) bool { return after(cursor, out[i]) })
		out = out[idx:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// after reports whether a sorts before b in (date, created_at, id) descending order.
func after(a, b domain.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.TransactionID > b.TransactionID
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r memTransactions) SumExpenses(_ context.Context, userID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.m.state.transactions {
		if t.UserID == userID && t.CategoryID == categoryID && t.Type == domain.Expense &&
			!t.Date.Before(start) && !t.Date.After(end) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r memTransactions) SaveTransaction(_ context.Context, t domain.Transaction) error {
	r.m.state.transactions[t.TransactionID] = t
	return nil
}

func (r memTransactions) UpdateTransaction(_ context.Context, t domain.Transaction) error {
	if _, ok := r.m.state.transactions[t.TransactionID]; !ok {
		return apperrors.ErrTransactionNotFound
	}
	r.m.state.transactions[t.TransactionID] = t
	return nil
}

func (r memTransactions) DeleteTransaction(_ context.Context, id string) error {
	if _, ok := r.m.state.transactions[id]; !ok {
		return apperrors.ErrTransactionNotFound
	}
	delete(r.m.state.transactions, id)
	return nil
}

// --- budgets ---

type memBudgets struct{ m *memStore }

func (r memBudgets) FindBudgetByID(_ context.Context, id string) (*domain.Budget, error) {
	b, ok := r.m.state.budgets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, id)
	}
	return &b, nil
}

func (r memBudgets) FindBudgetByName(_ context.Context, userID, name string) (*domain.Budget, error) {
	for _, b := range r.m.state.budgets {
		if b.UserID == userID && b.Name == name {
			return &b, nil
		}
	}
	return nil, apperrors.ErrBudgetNotFound
}

func (r memBudgets) ListBudgets(_ context.Context, userID string) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, b := range r.m.state.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r memBudgets) FindOverlappingBudgets(_ context.Context, userID, categoryID string, start, end time.Time, exclude string) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, bc := range r.m.state.allocations {
		if bc.CategoryID != categoryID || bc.BudgetID == exclude {
			continue
		}
		b := r.m.state.budgets[bc.BudgetID]
		if b.UserID == userID && b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBudgets) SaveBudget(_ context.Context, b domain.Budget) error {
	for _, other := range r.m.state.budgets {
		if other.UserID == b.UserID && other.Name == b.Name {
			return apperrors.ErrDuplicate
		}
	}
	r.m.state.budgets[b.BudgetID] = b
	return nil
}

func (r memBudgets) UpdateBudget(_ context.Context, b domain.Budget) error {
	if _, ok := r.m.state.budgets[b.BudgetID]; !ok {
		return apperrors.ErrBudgetNotFound
	}
	r.m.state.budgets[b.BudgetID] = b
	return nil
}

func (r memBudgets) DeleteBudget(_ context.Context, id string) error {
	for _, bc := range r.m.state.allocations {
		if bc.BudgetID == id {
			return fmt.Errorf("budget %s still has allocations", id)
		}
	}
	delete(r.m.state.budgets, id)
	return nil
}

func (r memBudgets) FindBudgetCategoryByID(_ context.Context, id string) (*domain.BudgetCategory, error) {
	bc, ok := r.m.state.allocations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, id)
	}
	return &bc, nil
}

func (r memBudgets) ListBudgetCategories(_ context.Context, budgetID string) ([]domain.BudgetCategory, error) {
	var out []domain.BudgetCategory
	for _, bc := range r.m.state.allocations {
		if bc.BudgetID == budgetID {
			out = append(out, bc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (r memBudgets) SaveBudgetCategory(_ context.Context, bc domain.BudgetCategory) error {
	r.m.state.allocations[bc.BudgetCategoryID] = bc
	return nil
}

func (r memBudgets) UpdateAllocatedAmount(_ context.Context, id string, amount decimal.Decimal, userID string, now time.Time) error {
	bc, ok := r.m.state.allocations[id]
	if !ok {
		return apperrors.ErrBudgetCategoryNotFound
	}
	bc.AllocatedAmount = amount
	bc.Touch(userID, now)
	r.m.state.allocations[id] = bc
	return nil
}

func (r memBudgets) DeleteBudgetCategory(_ context.Context, id string) error {
	delete(r.m.state.allocations, id)
	return nil
}

func (r memBudgets) DeleteBudgetCategoriesByBudget(_ context.Context, budgetID string) error {
	for id, bc := range r.m.state.allocations {
		if bc.BudgetID == budgetID {
			delete(r.m.state.allocations, id)
		}
	}
	return nil
}

func (r memBudgets) ApplyUsageDelta(_ context.Context, userID, categoryID string, date time.Time, delta decimal.Decimal, actorID string, now time.Time) ([]domain.BudgetCategory, error) {
	var touched []domain.BudgetCategory
	for id, bc := range r.m.state.allocations {
		if bc.CategoryID != categoryID {
			continue
		}
		b := r.m.state.budgets[bc.BudgetID]
		if b.UserID != userID || !b.Contains(date) {
			continue
		}
		bc.ApplySpent(delta)
		bc.Touch(actorID, now)
		r.m.state.allocations[id] = bc
		touched = append(touched, bc)
	}
	return touched, nil
}

func (r memBudgets) LockCategoryAllocations(context.Context, string, string) error { return nil }

// --- helpers for assertions ---

func (m *memStore) balance(accountID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.accounts[accountID].Balance
}

func (m *memStore) allocation(id string) domain.BudgetCategory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.allocations[id]
}

func (m *memStore) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.transactions)
}

func (m *memStore) budgetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.budgets)
}

func (m *memStore) allocationsOf(budgetID string) []domain.BudgetCategory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BudgetCategory
	for _, bc := range m.state.allocations {
		if bc.BudgetID == budgetID {
			out = append(out, bc)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
