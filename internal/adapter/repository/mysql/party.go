package mysql

import (
	"context"

	"p2p-backoffice/internal/domain/mirror"

	"gorm.io/gorm"
)

type PartyRepository struct{ db *gorm.DB }

func NewPartyRepository(db *gorm.DB) *PartyRepository { return &PartyRepository{db: db} }

func (r *PartyRepository) FindByRef(ctx context.Context, ref string) (*mirror.Party, error) {
	var out mirror.Party
	res := r.db.WithContext(ctx).Where("ref = ?", ref).Order("id ASC").First(&out)
	return &out, res.Error
}

func (r *PartyRepository) FindByPhone(ctx context.Context, phone string) (*mirror.Party, error) {
	var out mirror.Party
	res := r.db.WithContext(ctx).Where("phone = ?", phone).Order("id ASC").First(&out)
	return &out, res.Error
}

func (r *PartyRepository) Create(ctx context.Context, p *mirror.Party) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PartyRepository) Get(ctx context.Context, id uint64) (*mirror.Party, error) {
	var out mirror.Party
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}
