package application

import (
	"errors"
	"fmt"
	"time"

	"p2p-backoffice/internal/domain/rate"
	"p2p-backoffice/internal/domain/status"
)

var (
	ErrNotFound          = errors.New("loan application not found")
	ErrInvalidTransition = errors.New("invalid loan application transition")
	ErrInvalidAmount     = errors.New("invalid loan application amount")
	ErrLimitReached      = errors.New("borrower has reached the open loan limit")
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusDisbursed   Status = "disbursed"
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
	StatusDefaulted   Status = "defaulted"
)

// FromBridge maps a mirrored loan's lifecycle onto application statuses.
var FromBridge = status.NewVocabulary(StatusSubmitted, map[status.Status]Status{
	status.Waiting: StatusSubmitted,
	status.Success: StatusApproved,
	status.Clean:   StatusDisbursed,
	status.Fail:    StatusRejected,
})

type LoanApplication struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string `gorm:"size:32;uniqueIndex" json:"application_id"`
	BorrowerID    uint64 `gorm:"index" json:"borrower_id"`
	LoanTypeID    uint64 `gorm:"index" json:"loan_type_id"`

	RequestedAmount float64 `gorm:"type:decimal(18,2)" json:"requested_amount"`
	ApprovedAmount  float64 `gorm:"type:decimal(18,2)" json:"approved_amount"`
	InterestRate    float64 `gorm:"type:decimal(8,4)" json:"interest_rate"`
	TermMonths      int     `json:"term_months"`
	Purpose         string  `gorm:"type:text" json:"purpose"`

	ApplicationDate time.Time  `json:"application_date"`
	ApprovalDate    *time.Time `json:"approval_date,omitempty"`
	DisbursedAt     *time.Time `json:"disbursed_at,omitempty"`
	DueDate         time.Time  `json:"due_date"`

	MonthlyPayment float64 `gorm:"type:decimal(18,2)" json:"monthly_payment"`
	TotalInterest  float64 `gorm:"type:decimal(18,2)" json:"total_interest"`
	TotalPayable   float64 `gorm:"type:decimal(18,2)" json:"total_payable"`

	Status       Status `gorm:"size:16;index;default:'draft'" json:"status"`
	ApprovedBy   string `gorm:"size:32" json:"approved_by,omitempty"`
	RejectReason string `gorm:"type:text" json:"reject_reason,omitempty"`

	// Contract id on the lending server, set for imported applications.
	ServerLoanID string     `gorm:"size:64;index" json:"server_loan_id,omitempty"`
	LastSync     *time.Time `json:"last_sync,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LoanApplication) TableName() string { return "loan_applications" }

func (a *LoanApplication) Validate() error {
	if a.RequestedAmount <= 0 {
		return fmt.Errorf("%w: requested amount must be greater than 0", ErrInvalidAmount)
	}
	if a.ApprovedAmount < 0 || a.ApprovedAmount > a.RequestedAmount {
		return fmt.Errorf("%w: approved amount must be between 0 and the requested amount", ErrInvalidAmount)
	}
	return nil
}

// Principal is the approved amount once set, the requested amount before.
func (a *LoanApplication) Principal() float64 {
	if a.ApprovedAmount > 0 {
		return a.ApprovedAmount
	}
	return a.RequestedAmount
}

// Recompute refreshes due date and repayment totals from rate and term.
func (a *LoanApplication) Recompute() error {
	if a.ApplicationDate.IsZero() {
		a.ApplicationDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	a.DueDate = a.ApplicationDate.AddDate(0, a.TermMonths, 0)
	s, err := rate.Summarize(a.Principal(), a.InterestRate, a.TermMonths)
	if err != nil {
		return err
	}
	a.MonthlyPayment = s.MonthlyPayment
	a.TotalInterest = s.TotalInterest
	a.TotalPayable = s.TotalPayable
	return nil
}

func (a *LoanApplication) transition(to Status, from ...Status) error {
	for _, f := range from {
		if a.Status == f {
			a.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
}

func (a *LoanApplication) Submit() error { return a.transition(StatusSubmitted, StatusDraft) }

func (a *LoanApplication) StartReview() error {
	return a.transition(StatusUnderReview, StatusSubmitted)
}

// Approve defaults the approved amount to the requested one.
func (a *LoanApplication) Approve(actor string, amount float64, now time.Time) error {
	if a.Status != StatusSubmitted && a.Status != StatusUnderReview {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusApproved)
	}
	approved := a.ApprovedAmount
	if amount > 0 {
		approved = amount
	} else if approved == 0 {
		approved = a.RequestedAmount
	}
	if approved > a.RequestedAmount {
		return fmt.Errorf("%w: approved amount exceeds requested amount", ErrInvalidAmount)
	}
	a.ApprovedAmount = approved
	a.Status = StatusApproved
	d := now.UTC()
	a.ApprovalDate = &d
	a.ApprovedBy = actor
	return a.Recompute()
}

func (a *LoanApplication) Reject(reason string) error {
	if err := a.transition(StatusRejected, StatusSubmitted, StatusUnderReview); err != nil {
		return err
	}
	a.RejectReason = reason
	return nil
}

// CanRequestDisbursement guards action_disburse.
func (a *LoanApplication) CanRequestDisbursement() error {
	if a.Status != StatusApproved {
		return fmt.Errorf("%w: disbursement requires approved application, got %s", ErrInvalidTransition, a.Status)
	}
	return nil
}

func (a *LoanApplication) MarkDisbursed(now time.Time) error {
	if err := a.transition(StatusDisbursed, StatusApproved); err != nil {
		return err
	}
	d := now.UTC()
	a.DisbursedAt = &d
	return nil
}

func (a *LoanApplication) Activate() error { return a.transition(StatusActive, StatusDisbursed) }

func (a *LoanApplication) Complete() error { return a.transition(StatusCompleted, StatusActive) }

func (a *LoanApplication) MarkDefaulted() error { return a.transition(StatusDefaulted, StatusActive) }

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusDefaulted
}
