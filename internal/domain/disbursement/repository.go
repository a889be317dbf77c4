package disbursement

import "context"

type ListFilter struct {
	Status     Status
	BorrowerID uint64
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, d *Disbursement) error
	Save(ctx context.Context, d *Disbursement) error
	GetByDisbursementID(ctx context.Context, disbursementID string) (*Disbursement, error)
	GetByDisbursementIDForUpdate(ctx context.Context, disbursementID string) (*Disbursement, error)
	List(ctx context.Context, f ListFilter) ([]Disbursement, int64, error)
	// SumActiveByApplication totals amounts of non-rejected, non-cancelled rows.
	SumActiveByApplication(ctx context.Context, applicationID uint64, excludeID uint64) (float64, error)

	AddNote(ctx context.Context, n *AuditNote) error
	ListNotes(ctx context.Context, disbursementID uint64) ([]AuditNote, error)
}
