package uow

import (
	"context"

	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/mirror"
)

type Repos struct {
	Configs       loanconfig.Repository
	Applications  application.Repository
	Disbursements disbursement.Repository
	Parties       mirror.PartyRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the application row first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.LoanApplication) error) error
	// lock the disbursement row first, then pass it in
	WithinDisbursementTx(ctx context.Context, disbursementID string, fn func(r Repos, d *disbursement.Disbursement) error) error
}
