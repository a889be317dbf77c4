package applicationmock

import (
	"context"
	"errors"
	"testing"

	domain "p2p-backoffice/internal/domain/application"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	a := &domain.LoanApplication{ApplicationID: "A-1"}

	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.LoanApplication) error {
			called = true
			if got != a {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, a); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	m = &Repo{}
	if err := m.Create(ctx, a); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_GettersDefaultToCanceled(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if _, err := m.GetByApplicationID(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByApplicationID default: %v", err)
	}
	if _, err := m.GetByApplicationIDForUpdate(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByApplicationIDForUpdate default: %v", err)
	}
	if _, err := m.GetByIDForUpdate(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByIDForUpdate default: %v", err)
	}
	if n, err := m.CountOpenByBorrower(ctx, 1); err != nil || n != 0 {
		t.Fatalf("CountOpenByBorrower default: %d %v", n, err)
	}
}

func TestRepo_GetByApplicationID_Forwards(t *testing.T) {
	want := &domain.LoanApplication{ApplicationID: "A-2"}
	m := &Repo{GetByApplicationIDFn: func(_ context.Context, id string) (*domain.LoanApplication, error) {
		if id != "A-2" {
			t.Fatalf("id = %q", id)
		}
		return want, nil
	}}
	got, err := m.GetByApplicationID(context.Background(), "A-2")
	if err != nil || got != want {
		t.Fatalf("got %v %v", got, err)
	}
}
