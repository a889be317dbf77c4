package disbursement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"p2p-backoffice/internal/domain/application"
	domain "p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/uow"
	"p2p-backoffice/internal/infrastructure/logger"
	"p2p-backoffice/internal/infrastructure/metrics"
	"p2p-backoffice/pkg/id"
	"p2p-backoffice/pkg/page"
)

type ConfigSource interface {
	Active(ctx context.Context) (*loanconfig.Configuration, error)
}

// Transferer moves the money on the lending server.
type Transferer interface {
	Transfer(ctx context.Context, ep loanconfig.ServerEndpoint, d *domain.Disbursement, applicationID string) (domain.Receipt, error)
}

type EventPublisher interface {
	PublishDisbursement(ctx context.Context, ev domain.Event) error
}

type Usecase struct {
	disbs    domain.Repository
	apps     application.Repository
	configs  ConfigSource
	uow      uow.UnitOfWork
	transfer Transferer
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(
	disbs domain.Repository,
	apps application.Repository,
	configs ConfigSource,
	tx uow.UnitOfWork,
	transfer Transferer,
	events EventPublisher,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		disbs:    disbs,
		apps:     apps,
		configs:  configs,
		uow:      tx,
		transfer: transfer,
		events:   events,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// CreateForApplication opens a draft disbursement on an approved application.
// No money moves until Process.
func (u *Usecase) CreateForApplication(ctx context.Context, applicationID string, in CreateInput) (*domain.Disbursement, error) {
	var out *domain.Disbursement
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *application.LoanApplication) error {
		if err := a.CanRequestDisbursement(); err != nil {
			return err
		}
		amount := in.Amount
		if amount == 0 {
			amount = a.ApprovedAmount
		}
		method := in.Method
		if method == "" {
			method = domain.MethodBankTransfer
		}
		date := u.now().UTC().Truncate(24 * time.Hour)
		if in.DisbursementDate != nil {
			date = in.DisbursementDate.UTC()
		}
		d := &domain.Disbursement{
			DisbursementID:   id.NewID32(),
			ApplicationID:    a.ID,
			BorrowerID:       a.BorrowerID,
			Amount:           amount,
			InterestRate:     a.InterestRate,
			DisbursementDate: date,
			Method:           method,
			BankAccount:      in.BankAccount,
			BankName:         in.BankName,
			Notes:            in.Notes,
			Status:           domain.StatusDraft,
			BlockchainStatus: domain.ChainPending,
		}
		if err := u.checkAmount(ctx, r, d, a.ApprovedAmount); err != nil {
			return err
		}
		d.ComputeTotals()
		if err := r.Disbursements.Create(ctx, d); err != nil {
			return err
		}
		out = d
		return r.Disbursements.AddNote(ctx, &domain.AuditNote{
			DisbursementID: d.ID, Kind: domain.NoteInfo, Actor: in.Actor,
			Message: fmt.Sprintf("disbursement of %.2f requested", d.Amount),
		})
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkAmount holds the amount invariant, including other open disbursements
// on the same application.
func (u *Usecase) checkAmount(ctx context.Context, r uow.Repos, d *domain.Disbursement, approved float64) error {
	if err := d.ValidateAmount(approved); err != nil {
		return err
	}
	others, err := r.Disbursements.SumActiveByApplication(ctx, d.ApplicationID, d.ID)
	if err != nil {
		return err
	}
	if others+d.Amount > approved {
		return fmt.Errorf("%w: %.2f already committed of %.2f approved", domain.ErrInvalidAmount, others, approved)
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, disbursementID string) (*Detail, error) {
	d, err := u.disbs.GetByDisbursementID(ctx, disbursementID)
	if err != nil {
		return nil, notFound(err)
	}
	out := &Detail{Disbursement: *d}
	if a, err := u.apps.GetByID(ctx, d.ApplicationID); err == nil {
		out.LoanApplicationID = a.ApplicationID
		out.ApplicationRate = a.InterestRate
		out.ApplicationTerm = a.TermMonths
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	notes, err := u.disbs.ListNotes(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.AuditNote{}
	}
	out.Notes = notes
	return out, nil
}

func (u *Usecase) List(ctx context.Context, f domain.ListFilter) (*Page, error) {
	items, total, err := u.disbs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Disbursement{}
	}
	limit, offset := page.Clamp(f.Limit, f.Offset)
	return &Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// Update edits a disbursement that has not been approved yet.
func (u *Usecase) Update(ctx context.Context, disbursementID string, in UpdateInput) (*domain.Disbursement, error) {
	return u.step(ctx, disbursementID, func(r uow.Repos, d *domain.Disbursement) (string, error) {
		if d.Status != domain.StatusDraft && d.Status != domain.StatusPending {
			return "", fmt.Errorf("%w: cannot edit a %s disbursement", domain.ErrInvalidTransition, d.Status)
		}
		if in.Amount != nil {
			d.Amount = *in.Amount
		}
		if in.Method != nil {
			d.Method = *in.Method
		}
		if in.BankAccount != nil {
			d.BankAccount = *in.BankAccount
		}
		if in.BankName != nil {
			d.BankName = *in.BankName
		}
		if in.Notes != nil {
			d.Notes = *in.Notes
		}
		a, err := r.Applications.GetByID(ctx, d.ApplicationID)
		if err != nil {
			return "", err
		}
		if err := u.checkAmount(ctx, r, d, a.ApprovedAmount); err != nil {
			return "", err
		}
		d.ComputeTotals()
		return "", nil
	}, "")
}

// step locks the disbursement, applies fn, saves it and records a note
// when fn returns a message.
func (u *Usecase) step(ctx context.Context, disbursementID string, fn func(r uow.Repos, d *domain.Disbursement) (string, error), actor string) (*domain.Disbursement, error) {
	var out *domain.Disbursement
	err := u.uow.WithinDisbursementTx(ctx, disbursementID, func(r uow.Repos, d *domain.Disbursement) error {
		msg, err := fn(r, d)
		if err != nil {
			return err
		}
		if err := r.Disbursements.Save(ctx, d); err != nil {
			return err
		}
		out = d
		if msg == "" {
			return nil
		}
		return r.Disbursements.AddNote(ctx, &domain.AuditNote{DisbursementID: d.ID, Kind: domain.NoteInfo, Actor: actor, Message: msg})
	})
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (u *Usecase) Submit(ctx context.Context, disbursementID, actor string) (*domain.Disbursement, error) {
	return u.step(ctx, disbursementID, func(_ uow.Repos, d *domain.Disbursement) (string, error) {
		return "submitted for approval", d.Submit()
	}, actor)
}

func (u *Usecase) Approve(ctx context.Context, disbursementID, actor string) (*domain.Disbursement, error) {
	return u.step(ctx, disbursementID, func(_ uow.Repos, d *domain.Disbursement) (string, error) {
		return "approved", d.Approve(actor, u.now())
	}, actor)
}

func (u *Usecase) Reject(ctx context.Context, disbursementID, actor, reason string) (*domain.Disbursement, error) {
	d, err := u.step(ctx, disbursementID, func(_ uow.Repos, d *domain.Disbursement) (string, error) {
		msg := "rejected"
		if reason != "" {
			msg = "rejected: " + reason
		}
		return msg, d.Reject()
	}, actor)
	if err == nil {
		u.finish(ctx, d, domain.OutcomeRejected, reason)
	}
	return d, err
}

func (u *Usecase) Cancel(ctx context.Context, disbursementID, actor string) (*domain.Disbursement, error) {
	d, err := u.step(ctx, disbursementID, func(_ uow.Repos, d *domain.Disbursement) (string, error) {
		return "cancelled", d.Cancel()
	}, actor)
	if err == nil {
		u.finish(ctx, d, domain.OutcomeCancelled, "")
	}
	return d, err
}

const settleTimeout = 30 * time.Second

// Process performs the transfer. The row is moved to processing and
// committed before the remote call, and settled in a second transaction.
// A failed transfer returns the row to approved with one failure note.
func (u *Usecase) Process(ctx context.Context, disbursementID, actor string) (*domain.Disbursement, error) {
	cfg, err := u.configs.Active(ctx)
	if err != nil {
		return nil, err
	}

	var (
		snapshot      domain.Disbursement
		applicationID string
	)
	err = u.uow.WithinDisbursementTx(ctx, disbursementID, func(r uow.Repos, d *domain.Disbursement) error {
		if err := d.BeginProcessing(); err != nil {
			return err
		}
		a, err := r.Applications.GetByID(ctx, d.ApplicationID)
		if err != nil {
			return err
		}
		if err := d.ValidateAmount(a.ApprovedAmount); err != nil {
			return err
		}
		if err := r.Disbursements.Save(ctx, d); err != nil {
			return err
		}
		snapshot = *d
		applicationID = a.ApplicationID
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}

	receipt, transferErr := u.transfer.Transfer(ctx, cfg.Server(), &snapshot, applicationID)

	// the outcome must be recorded even when the caller has gone away
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	var out *domain.Disbursement
	err = u.uow.WithinDisbursementTx(ctx, disbursementID, func(r uow.Repos, d *domain.Disbursement) error {
		if transferErr != nil {
			if err := d.Rollback(); err != nil {
				return err
			}
			if err := r.Disbursements.Save(ctx, d); err != nil {
				return err
			}
			out = d
			return r.Disbursements.AddNote(ctx, &domain.AuditNote{
				DisbursementID: d.ID, Kind: domain.NoteFailure, Actor: actor, Message: transferErr.Error(),
			})
		}

		if err := d.MarkDisbursed(receipt, u.now()); err != nil {
			return err
		}
		if err := r.Disbursements.Save(ctx, d); err != nil {
			return err
		}
		a, err := r.Applications.GetByIDForUpdate(ctx, d.ApplicationID)
		if err != nil {
			return err
		}
		if a.Status == application.StatusApproved {
			if err := a.MarkDisbursed(u.now()); err != nil {
				return err
			}
			if err := r.Applications.Save(ctx, a); err != nil {
				return err
			}
		}
		out = d
		return r.Disbursements.AddNote(ctx, &domain.AuditNote{
			DisbursementID: d.ID, Kind: domain.NoteInfo, Actor: actor,
			Message: fmt.Sprintf("disbursed, server loan %s", receipt.LoanID),
		})
	})
	if err != nil {
		// the transfer outcome is known but could not be recorded; the row stays in processing
		u.log.Error("settling disbursement failed",
			zap.String("disbursement_id", disbursementID), zap.NamedError("transfer_error", transferErr), zap.Error(err))
		return nil, err
	}

	if transferErr != nil {
		u.finish(ctx, out, domain.OutcomeProcessFailed, transferErr.Error())
		return out, fmt.Errorf("%w: %v", domain.ErrTransferFailed, transferErr)
	}
	u.finish(ctx, out, domain.OutcomeDisbursed, "")
	u.log.Info("disbursement processed",
		zap.String("disbursement_id", disbursementID), zap.String("server_loan_id", out.ServerLoanID))
	return out, nil
}

// finish records a terminal outcome. Publish errors are logged only.
func (u *Usecase) finish(ctx context.Context, d *domain.Disbursement, outcome, reason string) {
	metrics.Disbursements.WithLabelValues(outcome).Inc()
	if u.events == nil {
		return
	}
	if err := u.events.PublishDisbursement(ctx, domain.NewEvent(d, outcome, reason, u.now())); err != nil {
		u.log.Warn("publish disbursement event failed",
			zap.String("disbursement_id", d.DisbursementID), zap.String("outcome", outcome), zap.Error(err))
	}
}
