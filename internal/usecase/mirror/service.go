package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/infrastructure/cache"
	"p2p-backoffice/internal/infrastructure/logger"
)

// Locker serialises passes across processes.
type Locker interface {
	Guard(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

type SyncReport struct {
	Source  string `json:"source"`
	Wallets Result `json:"wallets"`
	Loans   Result `json:"loans"`
}

type ImportReport struct {
	Applications  Result `json:"applications"`
	Disbursements Result `json:"disbursements"`
}

type Service struct {
	rec     *Reconciler
	loans   mirror.LoanRepository
	parties mirror.PartyRepository
	apps    application.Repository
	types   loanconfig.Repository
	lock    Locker
	log     *zap.Logger
}

func NewService(
	store mirror.Store,
	loans mirror.LoanRepository,
	parties mirror.PartyRepository,
	apps application.Repository,
	types loanconfig.Repository,
	lock Locker,
	log *zap.Logger,
) *Service {
	log = logger.OrNop(log)
	return &Service{
		rec:     NewReconciler(store, log),
		loans:   loans,
		parties: parties,
		apps:    apps,
		types:   types,
		lock:    lock,
		log:     log,
	}
}

// WithClock fixes the time stamped on every row.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.rec.WithClock(now)
	return s
}

func (s *Service) guard(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if s.lock == nil {
		return fn(ctx)
	}
	err := s.lock.Guard(ctx, name, fn)
	if errors.Is(err, cache.ErrLockHeld) {
		return mirror.ErrSyncInProgress
	}
	return err
}

// Sync mirrors wallets and then loans from src.
func (s *Service) Sync(ctx context.Context, src mirror.Source) (SyncReport, error) {
	rep := SyncReport{Source: src.Name()}
	err := s.guard(ctx, "sync:"+src.Name(), func(ctx context.Context) error {
		wallets, err := src.Wallets(ctx)
		if err != nil {
			return fmt.Errorf("fetch wallets from %s: %w", src.Name(), err)
		}
		rep.Wallets = s.rec.Reconcile(ctx, WalletSchema(), wallets)

		loans, err := src.Loans(ctx)
		if err != nil {
			return fmt.Errorf("fetch loans from %s: %w", src.Name(), err)
		}
		rep.Loans = s.rec.Reconcile(ctx, LoanSchema(s.log), loans)
		return nil
	})
	return rep, err
}

// Import projects mirrored loans into applications and then disbursements.
func (s *Service) Import(ctx context.Context) (ImportReport, error) {
	var rep ImportReport
	err := s.guard(ctx, "sync:import", func(ctx context.Context) error {
		loans, err := s.loans.ListLoans(ctx)
		if err != nil {
			return fmt.Errorf("list mirrored loans: %w", err)
		}
		docs := make([]mirror.Document, 0, len(loans))
		for _, l := range loans {
			docs = append(docs, l.AsDocument())
		}
		rep.Applications = s.rec.Reconcile(ctx, ApplicationImportSchema(s.parties, s.types), docs)
		rep.Disbursements = s.rec.Reconcile(ctx, DisbursementImportSchema(s.apps), docs)
		return nil
	})
	return rep, err
}
