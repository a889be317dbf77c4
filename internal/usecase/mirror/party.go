package mirror

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"p2p-backoffice/internal/domain/mirror"
)

var ErrNoParty = errors.New("borrower has no id, phone or name")

// ResolveParty finds a party by external ref, then by phone, and creates
// one when neither matches.
func ResolveParty(ctx context.Context, repo mirror.PartyRepository, ref mirror.PartyRef) (*mirror.Party, error) {
	ref.ID = strings.TrimSpace(ref.ID)
	ref.Phone = strings.TrimSpace(ref.Phone)
	ref.Name = strings.TrimSpace(ref.Name)
	if ref.ID == "" && ref.Phone == "" && ref.Name == "" {
		return nil, ErrNoParty
	}

	if ref.ID != "" {
		p, err := repo.FindByRef(ctx, ref.ID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if ref.Phone != "" {
		p, err := repo.FindByPhone(ctx, ref.Phone)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	name := ref.Name
	if name == "" {
		name = ref.Phone
	}
	if name == "" {
		name = mirror.UnknownPartyName
	}
	p := &mirror.Party{Name: name, Ref: ref.ID, Phone: ref.Phone}
	if err := repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
