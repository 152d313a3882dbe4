package repositories

// Store gives access to every repository. Implementations either run each call on its own
// (the root store) or inside the transaction handed out by WithinTx.
type Store interface {
	Accounts() AccountRepositoryFacade
	Categories() CategoryRepositoryFacade
	Transactions() TransactionRepositoryFacade
	Budgets() BudgetRepositoryFacade
}
