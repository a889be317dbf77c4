package loanconfigmock

import (
	"context"

	domain "p2p-backoffice/internal/domain/loanconfig"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	ListActiveFn     func(ctx context.Context) ([]domain.Configuration, error)
	CreateFn         func(ctx context.Context, c *domain.Configuration) error
	SaveFn           func(ctx context.Context, c *domain.Configuration) error
	CreateLoanTypeFn func(ctx context.Context, t *domain.LoanType) error
	GetLoanTypeFn    func(ctx context.Context, id uint64) (*domain.LoanType, error)
	FirstLoanTypeFn  func(ctx context.Context) (*domain.LoanType, error)
	ListLoanTypesFn  func(ctx context.Context) ([]domain.LoanType, error)
}

// Active returns a Repo whose ListActive yields cfgs.
func Active(cfgs ...domain.Configuration) *Repo {
	return &Repo{ListActiveFn: func(context.Context) ([]domain.Configuration, error) { return cfgs, nil }}
}

func (m *Repo) ListActive(ctx context.Context) ([]domain.Configuration, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Create(ctx context.Context, c *domain.Configuration) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, c *domain.Configuration) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, c)
	}
	return nil
}

func (m *Repo) CreateLoanType(ctx context.Context, t *domain.LoanType) error {
	if m.CreateLoanTypeFn != nil {
		return m.CreateLoanTypeFn(ctx, t)
	}
	return nil
}

func (m *Repo) GetLoanType(ctx context.Context, id uint64) (*domain.LoanType, error) {
	if m.GetLoanTypeFn != nil {
		return m.GetLoanTypeFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) FirstLoanType(ctx context.Context) (*domain.LoanType, error) {
	if m.FirstLoanTypeFn != nil {
		return m.FirstLoanTypeFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListLoanTypes(ctx context.Context) ([]domain.LoanType, error) {
	if m.ListLoanTypesFn != nil {
		return m.ListLoanTypesFn(ctx)
	}
	return nil, nil
}
