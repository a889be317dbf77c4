package disbursement

import "time"

// Outcomes published for terminal workflow steps.
const (
	OutcomeDisbursed     = "disbursed"
	OutcomeRejected      = "rejected"
	OutcomeCancelled     = "cancelled"
	OutcomeProcessFailed = "process_failed"
)

type Event struct {
	EventID        string    `json:"event_id"`
	Outcome        string    `json:"outcome"`
	DisbursementID string    `json:"disbursement_id"`
	BorrowerID     uint64    `json:"borrower_id"`
	Amount         float64   `json:"amount"`
	Status         Status    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	ServerLoanID   string    `json:"server_loan_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewEvent snapshots d; the caller assigns EventID.
func NewEvent(d *Disbursement, outcome, reason string, now time.Time) Event {
	return Event{
		Outcome:        outcome,
		DisbursementID: d.DisbursementID,
		BorrowerID:     d.BorrowerID,
		Amount:         d.Amount,
		Status:         d.Status,
		Reason:         reason,
		ServerLoanID:   d.ServerLoanID,
		OccurredAt:     now.UTC(),
	}
}
