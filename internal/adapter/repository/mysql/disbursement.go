package mysql

import (
	"context"

	disbDomain "p2p-backoffice/internal/domain/disbursement"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DisbursementRepository struct{ db *gorm.DB }

func NewDisbursementRepository(db *gorm.DB) *DisbursementRepository {
	return &DisbursementRepository{db: db}
}

func (r *DisbursementRepository) Create(ctx context.Context, d *disbDomain.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DisbursementRepository) Save(ctx context.Context, d *disbDomain.Disbursement) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DisbursementRepository) GetByDisbursementID(ctx context.Context, disbursementID string) (*disbDomain.Disbursement, error) {
	var out disbDomain.Disbursement
	res := r.db.WithContext(ctx).Where("disbursement_id = ?", disbursementID).First(&out)
	return &out, res.Error
}

func (r *DisbursementRepository) GetByDisbursementIDForUpdate(ctx context.Context, disbursementID string) (*disbDomain.Disbursement, error) {
	var out disbDomain.Disbursement
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("disbursement_id = ?", disbursementID).
		First(&out)
	return &out, res.Error
}

func (r *DisbursementRepository) List(ctx context.Context, f disbDomain.ListFilter) ([]disbDomain.Disbursement, int64, error) {
	q := r.db.WithContext(ctx).Model(&disbDomain.Disbursement{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.BorrowerID != 0 {
		q = q.Where("borrower_id = ?", f.BorrowerID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []disbDomain.Disbursement
	err := q.Scopes(Paginate(f.Limit, f.Offset)).Order("id DESC").Find(&out).Error
	return out, total, err
}

func (r *DisbursementRepository) SumActiveByApplication(ctx context.Context, applicationID uint64, excludeID uint64) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).Model(&disbDomain.Disbursement{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("application_id = ? AND id <> ? AND status NOT IN ?", applicationID, excludeID,
			[]disbDomain.Status{disbDomain.StatusRejected, disbDomain.StatusCancelled}).
		Scan(&sum).Error
	return sum, err
}

func (r *DisbursementRepository) AddNote(ctx context.Context, n *disbDomain.AuditNote) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *DisbursementRepository) ListNotes(ctx context.Context, disbursementID uint64) ([]disbDomain.AuditNote, error) {
	var out []disbDomain.AuditNote
	err := r.db.WithContext(ctx).Where("disbursement_id = ?", disbursementID).Order("id ASC").Find(&out).Error
	return out, err
}
