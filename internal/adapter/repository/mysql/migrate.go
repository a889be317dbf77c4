package mysql

import (
	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/mirror"

	"gorm.io/gorm"
)

// Models lists every table the service owns.
func Models() []any {
	return []any{
		&loanconfig.Configuration{},
		&loanconfig.LoanType{},
		&mirror.Party{},
		&mirror.Wallet{},
		&mirror.ExternalLoan{},
		&application.LoanApplication{},
		&disbursement.Disbursement{},
		&disbursement.AuditNote{},
	}
}

func Migrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
