package loanconfig

import "context"

type Repository interface {
	// ListActive returns active configurations ordered by id ascending.
	ListActive(ctx context.Context) ([]Configuration, error)
	Create(ctx context.Context, c *Configuration) error
	Save(ctx context.Context, c *Configuration) error

	CreateLoanType(ctx context.Context, t *LoanType) error
	GetLoanType(ctx context.Context, id uint64) (*LoanType, error)
	FirstLoanType(ctx context.Context) (*LoanType, error)
	ListLoanTypes(ctx context.Context) ([]LoanType, error)
}
