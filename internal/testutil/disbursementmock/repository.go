package disbursementmock

import (
	"context"

	domain "p2p-backoffice/internal/domain/disbursement"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                       func(ctx context.Context, d *domain.Disbursement) error
	SaveFn                         func(ctx context.Context, d *domain.Disbursement) error
	GetByDisbursementIDFn          func(ctx context.Context, disbursementID string) (*domain.Disbursement, error)
	GetByDisbursementIDForUpdateFn func(ctx context.Context, disbursementID string) (*domain.Disbursement, error)
	ListFn                         func(ctx context.Context, f domain.ListFilter) ([]domain.Disbursement, int64, error)
	SumActiveByApplicationFn       func(ctx context.Context, applicationID, excludeID uint64) (float64, error)
	AddNoteFn                      func(ctx context.Context, n *domain.AuditNote) error
	ListNotesFn                    func(ctx context.Context, disbursementID uint64) ([]domain.AuditNote, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Disbursement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, d *domain.Disbursement) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDisbursementID(ctx context.Context, disbursementID string) (*domain.Disbursement, error) {
	if m.GetByDisbursementIDFn != nil {
		return m.GetByDisbursementIDFn(ctx, disbursementID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByDisbursementIDForUpdate(ctx context.Context, disbursementID string) (*domain.Disbursement, error) {
	if m.GetByDisbursementIDForUpdateFn != nil {
		return m.GetByDisbursementIDForUpdateFn(ctx, disbursementID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Disbursement, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, nil
}

func (m *Repo) SumActiveByApplication(ctx context.Context, applicationID, excludeID uint64) (float64, error) {
	if m.SumActiveByApplicationFn != nil {
		return m.SumActiveByApplicationFn(ctx, applicationID, excludeID)
	}
	return 0, nil
}

func (m *Repo) AddNote(ctx context.Context, n *domain.AuditNote) error {
	if m.AddNoteFn != nil {
		return m.AddNoteFn(ctx, n)
	}
	return nil
}

func (m *Repo) ListNotes(ctx context.Context, disbursementID uint64) ([]domain.AuditNote, error) {
	if m.ListNotesFn != nil {
		return m.ListNotesFn(ctx, disbursementID)
	}
	return nil, nil
}
