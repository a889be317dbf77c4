package application

import "context"

type ListFilter struct {
	Status     Status
	BorrowerID uint64
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	Save(ctx context.Context, a *LoanApplication) error
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*LoanApplication, error)
	GetByID(ctx context.Context, id uint64) (*LoanApplication, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*LoanApplication, error)
	GetByServerLoanID(ctx context.Context, serverLoanID string) (*LoanApplication, error)
	List(ctx context.Context, f ListFilter) ([]LoanApplication, int64, error)
	CountOpenByBorrower(ctx context.Context, borrowerID uint64) (int64, error)
}
