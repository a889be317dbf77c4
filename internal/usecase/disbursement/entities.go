package disbursement

import (
	"time"

	domain "p2p-backoffice/internal/domain/disbursement"
)

type CreateInput struct {
	Amount           float64 // zero seeds the approved amount
	Method           domain.Method
	BankAccount      string
	BankName         string
	Notes            string
	DisbursementDate *time.Time
	Actor            string
}

type UpdateInput struct {
	Amount      *float64
	Method      *domain.Method
	BankAccount *string
	BankName    *string
	Notes       *string
}

// Detail is a disbursement with the application terms it was priced on.
type Detail struct {
	domain.Disbursement
	LoanApplicationID string             `json:"loan_application_id"`
	ApplicationRate   float64            `json:"application_interest_rate"`
	ApplicationTerm   int                `json:"application_term_months"`
	Notes             []domain.AuditNote `json:"audit_notes"`
}

type Page struct {
	Items  []domain.Disbursement `json:"items"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}
