package uowmock

import (
	"context"
	"errors"

	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn             func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinApplicationTxFn  func(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error
	WithinDisbursementTxFn func(ctx context.Context, disbursementID string, fn func(r uow.Repos, d *disbursement.Disbursement) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough runs every callback against repos without a transaction,
// loading locked rows through the repos' ForUpdate getters.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinApplicationTxFn: func(ctx context.Context, id string, fn func(uow.Repos, *application.LoanApplication) error) error {
			a, err := repos.Applications.GetByApplicationIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, a)
		},
		WithinDisbursementTxFn: func(ctx context.Context, id string, fn func(uow.Repos, *disbursement.Disbursement) error) error {
			d, err := repos.Disbursements.GetByDisbursementIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, d)
		},
	}
}

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	if m.WithinApplicationTxFn != nil {
		return m.WithinApplicationTxFn(ctx, applicationID, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinDisbursementTx(ctx context.Context, disbursementID string, fn func(r uow.Repos, d *disbursement.Disbursement) error) error {
	if m.WithinDisbursementTxFn != nil {
		return m.WithinDisbursementTxFn(ctx, disbursementID, fn)
	}
	return errUnimplemented
}
