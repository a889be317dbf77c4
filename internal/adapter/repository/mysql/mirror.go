package mysql

import (
	"context"
	"time"

	"p2p-backoffice/internal/domain/mirror"

	"gorm.io/gorm"
)

// MirrorStore implements mirror.Store over arbitrary tables.
type MirrorStore struct{ db *gorm.DB }

func NewMirrorStore(db *gorm.DB) *MirrorStore { return &MirrorStore{db: db} }

func (s *MirrorStore) Exists(ctx context.Context, table, keyColumn string, key any) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Table(table).Where(keyColumn+" = ?", key).Count(&n).Error
	return n > 0, err
}

func (s *MirrorStore) Insert(ctx context.Context, table string, row map[string]any) error {
	return s.db.WithContext(ctx).Table(table).Create(row).Error
}

func (s *MirrorStore) Update(ctx context.Context, table, keyColumn string, key any, row map[string]any) error {
	return s.db.WithContext(ctx).Table(table).Where(keyColumn+" = ?", key).Updates(row).Error
}

type MirrorLoanRepository struct{ db *gorm.DB }

func NewMirrorLoanRepository(db *gorm.DB) *MirrorLoanRepository {
	return &MirrorLoanRepository{db: db}
}

func (r *MirrorLoanRepository) ListLoans(ctx context.Context) ([]mirror.ExternalLoan, error) {
	var out []mirror.ExternalLoan
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *MirrorLoanRepository) ListLoansBetween(ctx context.Context, from, to time.Time) ([]mirror.ExternalLoan, error) {
	q := r.db.WithContext(ctx)
	if !from.IsZero() {
		q = q.Where("created_at_source >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at_source <= ?", to)
	}
	var out []mirror.ExternalLoan
	err := q.Order("created_at_source ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *MirrorLoanRepository) LatestLoans(ctx context.Context, limit int) ([]mirror.ExternalLoan, error) {
	var out []mirror.ExternalLoan
	err := r.db.WithContext(ctx).Order("created_at_source DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}
