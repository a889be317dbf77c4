package mysql

import (
	"context"
	"errors"
	"testing"

	"p2p-backoffice/internal/domain/application"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestApplicationRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	a := makeApplication(7, application.StatusDraft)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("expected auto id")
	}

	got, err := repo.GetByApplicationID(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BorrowerID != 7 || got.Status != application.StatusDraft {
		t.Fatalf("unexpected row: %+v", got)
	}

	byID, err := repo.GetByIDForUpdate(ctx, a.ID)
	if err != nil || byID.ApplicationID != a.ApplicationID {
		t.Fatalf("get by id for update: %v %+v", err, byID)
	}

	if _, err := repo.GetByApplicationID(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestApplicationRepository_SaveAndServerLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	a := makeApplication(1, application.StatusSubmitted)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	a.ServerLoanID = "contract-1"
	a.Status = application.StatusApproved
	if err := repo.Save(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetByServerLoanID(ctx, "contract-1")
	if err != nil {
		t.Fatalf("get by server loan: %v", err)
	}
	if got.Status != application.StatusApproved {
		t.Fatalf("status not persisted: %s", got.Status)
	}
}

func TestApplicationRepository_ListFiltersAndPages(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, makeApplication(1, application.StatusSubmitted)))
	}
	require.NoError(t, repo.Create(ctx, makeApplication(2, application.StatusSubmitted)))
	require.NoError(t, repo.Create(ctx, makeApplication(1, application.StatusRejected)))

	rows, total, err := repo.List(ctx, application.ListFilter{Status: application.StatusSubmitted, BorrowerID: 1, Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, rows, 2)
	require.Greater(t, rows[0].ID, rows[1].ID)

	rows, total, err = repo.List(ctx, application.ListFilter{Limit: 2, Offset: 6})
	require.NoError(t, err)
	require.EqualValues(t, 7, total)
	require.Len(t, rows, 1)
}

func TestApplicationRepository_CountOpenByBorrower(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	for _, st := range []application.Status{
		application.StatusDraft, application.StatusSubmitted, application.StatusApproved,
		application.StatusActive, application.StatusRejected, application.StatusCompleted,
	} {
		require.NoError(t, repo.Create(ctx, makeApplication(9, st)))
	}
	n, err := repo.CountOpenByBorrower(ctx, 9)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestApplicationRepository_Tx_Rollback(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	a := makeApplication(1, application.StatusDraft)
	boom := errors.New("boom")
	err := repo.Tx(ctx, func(r application.Repository) error {
		if err := r.Create(ctx, a); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if _, err := repo.GetByApplicationID(ctx, a.ApplicationID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("row should be rolled back, got %v", err)
	}
}

func TestApplicationRepository_ForUpdateEmitsRowLock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM .loan_applications. WHERE application_id = \?.* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "status"}).
			AddRow(3, "abc", "approved"))

	got, err := NewApplicationRepository(db).GetByApplicationIDForUpdate(context.Background(), "abc")
	require.NoError(t, err)
	require.EqualValues(t, 3, got.ID)
	require.Equal(t, application.StatusApproved, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
