package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/rate"
	"p2p-backoffice/internal/domain/uow"
	"p2p-backoffice/internal/infrastructure/logger"
	"p2p-backoffice/pkg/id"
	"p2p-backoffice/pkg/page"
)

// ConfigSource yields the configuration for one logical operation.
type ConfigSource interface {
	Active(ctx context.Context) (*loanconfig.Configuration, error)
}

type Usecase struct {
	apps    domain.Repository
	types   loanconfig.Repository
	configs ConfigSource
	uow     uow.UnitOfWork
	log     *zap.Logger
	now     func() time.Time
}

func NewUsecase(apps domain.Repository, types loanconfig.Repository, configs ConfigSource, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{apps: apps, types: types, configs: configs, uow: tx, log: logger.OrNop(log), now: time.Now}
}

// notFound maps a missing row to the domain sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.LoanApplication, error) {
	cfg, err := u.configs.Active(ctx)
	if err != nil {
		return nil, err
	}
	lim := cfg.Limits()
	if !lim.InLimits(in.RequestedAmount) {
		return nil, fmt.Errorf("%w: requested amount must be between %.2f and %.2f", domain.ErrInvalidAmount, lim.Min, lim.Max)
	}

	lt, err := u.types.GetLoanType(ctx, in.LoanTypeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanconfig.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if (lt.MinAmount > 0 && in.RequestedAmount < lt.MinAmount) || (lt.MaxAmount > 0 && in.RequestedAmount > lt.MaxAmount) {
		return nil, fmt.Errorf("%w: requested amount outside the %s range", domain.ErrInvalidAmount, lt.Code)
	}

	if lim.MaxConcurrentLoans > 0 {
		open, err := u.apps.CountOpenByBorrower(ctx, in.BorrowerID)
		if err != nil {
			return nil, err
		}
		if open >= int64(lim.MaxConcurrentLoans) {
			return nil, fmt.Errorf("%w: borrower %d has %d open applications", domain.ErrLimitReached, in.BorrowerID, open)
		}
	}

	appDate := u.now().UTC().Truncate(24 * time.Hour)
	if in.ApplicationDate != nil {
		appDate = in.ApplicationDate.UTC()
	}
	a := &domain.LoanApplication{
		ApplicationID:   id.NewID32(),
		BorrowerID:      in.BorrowerID,
		LoanTypeID:      lt.ID,
		RequestedAmount: in.RequestedAmount,
		InterestRate:    lt.InterestRate,
		TermMonths:      lt.TermMonths,
		Purpose:         in.Purpose,
		ApplicationDate: appDate,
		Status:          domain.StatusDraft,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := a.Recompute(); err != nil {
		return nil, err
	}
	if err := u.apps.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (u *Usecase) Get(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	a, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (u *Usecase) List(ctx context.Context, f domain.ListFilter) (*Page, error) {
	items, total, err := u.apps.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.LoanApplication{}
	}
	limit, offset := page.Clamp(f.Limit, f.Offset)
	return &Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// transition locks the row, applies step and persists the result.
func (u *Usecase) transition(ctx context.Context, applicationID string, step func(a *domain.LoanApplication) error) (*domain.LoanApplication, error) {
	var out *domain.LoanApplication
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		if err := step(a); err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (u *Usecase) Submit(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	return u.transition(ctx, applicationID, func(a *domain.LoanApplication) error { return a.Submit() })
}

func (u *Usecase) Review(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	return u.transition(ctx, applicationID, func(a *domain.LoanApplication) error { return a.StartReview() })
}

func (u *Usecase) Approve(ctx context.Context, applicationID string, in ApproveInput) (*domain.LoanApplication, error) {
	a, err := u.transition(ctx, applicationID, func(a *domain.LoanApplication) error {
		return a.Approve(in.Actor, in.Amount, u.now())
	})
	if err == nil {
		u.log.Info("loan application approved",
			zap.String("application_id", applicationID), zap.String("actor", in.Actor), zap.Float64("amount", a.ApprovedAmount))
	}
	return a, err
}

func (u *Usecase) Reject(ctx context.Context, applicationID, reason string) (*domain.LoanApplication, error) {
	return u.transition(ctx, applicationID, func(a *domain.LoanApplication) error { return a.Reject(reason) })
}

func (u *Usecase) Activate(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	return u.transition(ctx, applicationID, func(a *domain.LoanApplication) error { return a.Activate() })
}

func (u *Usecase) Complete(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	return u.transition(ctx, applicationID, func(a *domain.LoanApplication) error { return a.Complete() })
}

func (u *Usecase) MarkDefaulted(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	return u.transition(ctx, applicationID, func(a *domain.LoanApplication) error { return a.MarkDefaulted() })
}

// Quote prices a prospective loan against the active configuration.
func (u *Usecase) Quote(ctx context.Context, in QuoteInput) (rate.Quote, error) {
	cfg, err := u.configs.Active(ctx)
	if err != nil {
		return rate.Quote{}, err
	}
	return rate.NewQuote(cfg, in.Profile, in.Principal, in.TermMonths)
}

func (u *Usecase) Schedule(ctx context.Context, applicationID string) ([]rate.Installment, error) {
	a, err := u.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return rate.Schedule(a.Principal(), a.InterestRate, a.TermMonths, a.ApplicationDate)
}
