package uowmock

import (
	"context"
	"errors"
	"testing"

	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/uow"
	"p2p-backoffice/internal/testutil/applicationmock"
	"p2p-backoffice/internal/testutil/disbursementmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()
	apps := &applicationmock.Repo{}
	disbs := &disbursementmock.Repo{}
	repos := uow.Repos{Applications: apps, Disbursements: disbs}

	innerCalled := false
	m := New().WithWithinTx(func(gotCtx context.Context, fn func(r uow.Repos) error) error {
		if gotCtx != ctx {
			t.Fatalf("WithinTx: ctx mismatch")
		}
		return fn(repos)
	})
	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Applications != apps || r.Disbursements != disbs {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := New()
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx: want errUnimplemented, got %v", err)
	}
	if err := m.WithinApplicationTx(ctx, "a", func(uow.Repos, *application.LoanApplication) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinApplicationTx: want errUnimplemented, got %v", err)
	}
	if err := m.WithinDisbursementTx(ctx, "d", func(uow.Repos, *disbursement.Disbursement) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinDisbursementTx: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_LoadsLockedRows(t *testing.T) {
	ctx := context.Background()
	app := &application.LoanApplication{ApplicationID: "A"}
	disb := &disbursement.Disbursement{DisbursementID: "D"}
	repos := uow.Repos{
		Applications: &applicationmock.Repo{GetByApplicationIDForUpdateFn: func(_ context.Context, id string) (*application.LoanApplication, error) {
			if id != "A" {
				return nil, application.ErrNotFound
			}
			return app, nil
		}},
		Disbursements: &disbursementmock.Repo{GetByDisbursementIDForUpdateFn: func(context.Context, string) (*disbursement.Disbursement, error) {
			return disb, nil
		}},
	}
	m := Passthrough(repos)

	if err := m.WithinApplicationTx(ctx, "A", func(_ uow.Repos, got *application.LoanApplication) error {
		if got != app {
			t.Fatalf("wrong application")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinApplicationTx: %v", err)
	}
	if err := m.WithinApplicationTx(ctx, "B", func(uow.Repos, *application.LoanApplication) error {
		t.Fatalf("callback must not run")
		return nil
	}); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := m.WithinDisbursementTx(ctx, "D", func(_ uow.Repos, got *disbursement.Disbursement) error {
		if got != disb {
			t.Fatalf("wrong disbursement")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinDisbursementTx: %v", err)
	}

	m.Reset()
	if m.WithinTxFn != nil {
		t.Fatalf("Reset did not clear")
	}
}
