package mysql

import (
	"context"

	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Configs:       &ConfigRepository{db: tx},
		Applications:  &ApplicationRepository{db: tx},
		Disbursements: &DisbursementRepository{db: tx},
		Parties:       &PartyRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		a, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

func (u *GormUoW) WithinDisbursementTx(ctx context.Context, disbursementID string, fn func(r uow.Repos, d *disbursement.Disbursement) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the disbursement row up-front to prevent races
		d, err := r.Disbursements.GetByDisbursementIDForUpdate(ctx, disbursementID)
		if err != nil {
			return err
		}
		return fn(r, d)
	})
}
