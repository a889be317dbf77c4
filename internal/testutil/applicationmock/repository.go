package applicationmock

import (
	"context"

	domain "p2p-backoffice/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled; unset writers succeed.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.LoanApplication) error
	SaveFn                        func(ctx context.Context, a *domain.LoanApplication) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByIDFn                     func(ctx context.Context, id uint64) (*domain.LoanApplication, error)
	GetByIDForUpdateFn            func(ctx context.Context, id uint64) (*domain.LoanApplication, error)
	GetByServerLoanIDFn           func(ctx context.Context, serverLoanID string) (*domain.LoanApplication, error)
	ListFn                        func(ctx context.Context, f domain.ListFilter) ([]domain.LoanApplication, int64, error)
	CountOpenByBorrowerFn         func(ctx context.Context, borrowerID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.LoanApplication) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.LoanApplication, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.LoanApplication, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByServerLoanID(ctx context.Context, serverLoanID string) (*domain.LoanApplication, error) {
	if m.GetByServerLoanIDFn != nil {
		return m.GetByServerLoanIDFn(ctx, serverLoanID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.LoanApplication, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, nil
}

func (m *Repo) CountOpenByBorrower(ctx context.Context, borrowerID uint64) (int64, error) {
	if m.CountOpenByBorrowerFn != nil {
		return m.CountOpenByBorrowerFn(ctx, borrowerID)
	}
	return 0, nil
}
