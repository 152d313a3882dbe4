package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used by the HTTP handlers, the CLI and the OFX importer.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Category    CategorySvcFacade
	Transaction TransactionSvcFacade
	Budget      BudgetSvcFacade
	Query       QuerySvc

	// Ledger and Tracker are exposed for tooling; handlers never call them directly.
	Ledger  AccountLedger
	Tracker BudgetAllocationTracker
}
