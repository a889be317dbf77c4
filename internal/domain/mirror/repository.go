package mirror

import (
	"context"
	"time"
)

// Store writes schema-less rows for the reconciler.
type Store interface {
	Exists(ctx context.Context, table, keyColumn string, key any) (bool, error)
	Insert(ctx context.Context, table string, row map[string]any) error
	Update(ctx context.Context, table, keyColumn string, key any, row map[string]any) error
}

type PartyRepository interface {
	FindByRef(ctx context.Context, ref string) (*Party, error)
	FindByPhone(ctx context.Context, phone string) (*Party, error)
	Create(ctx context.Context, p *Party) error
	Get(ctx context.Context, id uint64) (*Party, error)
}

type LoanRepository interface {
	ListLoans(ctx context.Context) ([]ExternalLoan, error)
	// ListLoansBetween filters on created_at_source; zero bounds are open.
	ListLoansBetween(ctx context.Context, from, to time.Time) ([]ExternalLoan, error)
	LatestLoans(ctx context.Context, limit int) ([]ExternalLoan, error)
}
