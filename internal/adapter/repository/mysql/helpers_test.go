package mysql

import (
	"path/filepath"
	"testing"
	"time"

	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a file-backed sqlite db so every pooled conn sees the schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backoffice.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func makeApplication(borrowerID uint64, st application.Status) *application.LoanApplication {
	return &application.LoanApplication{
		ApplicationID:   id.NewID32(),
		BorrowerID:      borrowerID,
		RequestedAmount: 10_000_000,
		InterestRate:    12,
		TermMonths:      12,
		ApplicationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:          st,
	}
}

func makeDisbursement(appID, borrowerID uint64, amount float64, st disbursement.Status) *disbursement.Disbursement {
	return &disbursement.Disbursement{
		DisbursementID:   id.NewID32(),
		ApplicationID:    appID,
		BorrowerID:       borrowerID,
		Amount:           amount,
		InterestRate:     12,
		DisbursementDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Method:           disbursement.MethodBankTransfer,
		Status:           st,
		BlockchainStatus: disbursement.ChainPending,
	}
}
