package mysql

import (
	"context"

	cfgDomain "p2p-backoffice/internal/domain/loanconfig"

	"gorm.io/gorm"
)

type ConfigRepository struct{ db *gorm.DB }

func NewConfigRepository(db *gorm.DB) *ConfigRepository { return &ConfigRepository{db: db} }

func (r *ConfigRepository) ListActive(ctx context.Context) ([]cfgDomain.Configuration, error) {
	var out []cfgDomain.Configuration
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *ConfigRepository) Create(ctx context.Context, c *cfgDomain.Configuration) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ConfigRepository) Save(ctx context.Context, c *cfgDomain.Configuration) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ConfigRepository) CreateLoanType(ctx context.Context, t *cfgDomain.LoanType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ConfigRepository) GetLoanType(ctx context.Context, id uint64) (*cfgDomain.LoanType, error) {
	var out cfgDomain.LoanType
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *ConfigRepository) FirstLoanType(ctx context.Context) (*cfgDomain.LoanType, error) {
	var out cfgDomain.LoanType
	res := r.db.WithContext(ctx).Order("id ASC").First(&out)
	return &out, res.Error
}

func (r *ConfigRepository) ListLoanTypes(ctx context.Context) ([]cfgDomain.LoanType, error) {
	var out []cfgDomain.LoanType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}
