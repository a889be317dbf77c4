package mysql

import (
	"context"
	"errors"
	"testing"

	"p2p-backoffice/internal/domain/loanconfig"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConfigRepository_ListActiveOrdersByID(t *testing.T) {
	db := openTestDB(t)
	repo := NewConfigRepository(db)
	ctx := context.Background()

	inactive := loanconfig.Defaults("old")
	inactive.Active = false
	require.NoError(t, repo.Create(ctx, loanconfig.Defaults("first")))
	require.NoError(t, repo.Create(ctx, inactive))
	require.NoError(t, repo.Create(ctx, loanconfig.Defaults("second")))

	rows, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "first", rows[0].Name)
	require.Equal(t, "second", rows[1].Name)

	rows[0].Active = false
	require.NoError(t, repo.Save(ctx, &rows[0]))
	rows, err = repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestConfigRepository_LoanTypes(t *testing.T) {
	db := openTestDB(t)
	repo := NewConfigRepository(db)
	ctx := context.Background()

	if _, err := repo.FirstLoanType(ctx); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want not found on empty table, got %v", err)
	}

	lt := loanconfig.DefaultLoanType()
	require.NoError(t, repo.CreateLoanType(ctx, lt))
	require.NoError(t, repo.CreateLoanType(ctx, &loanconfig.LoanType{Name: "SME", Code: "SME", TermMonths: 6, InterestRate: 14}))

	first, err := repo.FirstLoanType(ctx)
	require.NoError(t, err)
	require.Equal(t, "DEFAULT", first.Code)

	got, err := repo.GetLoanType(ctx, lt.ID)
	require.NoError(t, err)
	require.Equal(t, 12, got.TermMonths)

	all, err := repo.ListLoanTypes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.Error(t, repo.CreateLoanType(ctx, &loanconfig.LoanType{Name: "dup", Code: "SME", TermMonths: 1}))
}
