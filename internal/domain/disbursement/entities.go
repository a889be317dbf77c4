package disbursement

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"p2p-backoffice/internal/domain/status"
)

var (
	ErrNotFound          = errors.New("disbursement not found")
	ErrInvalidTransition = errors.New("invalid disbursement transition")
	ErrInvalidAmount     = errors.New("invalid disbursement amount")
	ErrTransferFailed    = errors.New("disbursement transfer failed")
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusProcessing Status = "processing"
	StatusDisbursed  Status = "disbursed"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
	MethodBlockchain   Method = "blockchain"
)

// Confirmation state reported by the lending server.
const (
	ChainPending   = "pending"
	ChainConfirmed = "confirmed"
	ChainFailed    = "failed"
)

// FromBridge maps a mirrored loan's lifecycle onto disbursement statuses.
var FromBridge = status.NewVocabulary(StatusPending, map[status.Status]Status{
	status.Waiting: StatusPending,
	status.Success: StatusApproved,
	status.Clean:   StatusDisbursed,
	status.Fail:    StatusRejected,
})

type Disbursement struct {
	ID             uint64 `gorm:"primaryKey;column:id" json:"-"`
	DisbursementID string `gorm:"size:32;uniqueIndex" json:"disbursement_id"`
	ApplicationID  uint64 `gorm:"index" json:"-"`
	BorrowerID     uint64 `gorm:"index" json:"borrower_id"`

	Amount         float64 `gorm:"type:decimal(18,2)" json:"amount"`
	InterestRate   float64 `gorm:"type:decimal(8,4)" json:"interest_rate"`
	InterestAmount float64 `gorm:"type:decimal(18,2)" json:"interest_amount"`
	TotalAmount    float64 `gorm:"type:decimal(18,2)" json:"total_amount"`

	DisbursementDate time.Time `json:"disbursement_date"`
	Method           Method    `gorm:"size:16;default:'bank_transfer'" json:"disbursement_method"`
	BankAccount      string    `gorm:"size:64" json:"bank_account,omitempty"`
	BankName         string    `gorm:"size:128" json:"bank_name,omitempty"`
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`

	Status     Status     `gorm:"size:16;index;default:'draft'" json:"status"`
	ApprovedBy string     `gorm:"size:32" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	ServerLoanID       string     `gorm:"size:64;index" json:"server_loan_id,omitempty"`
	ServerInvestmentID string     `gorm:"size:64" json:"server_investment_id,omitempty"`
	BlockchainTxID     string     `gorm:"size:128" json:"blockchain_tx_id,omitempty"`
	BlockchainStatus   string     `gorm:"size:16;default:'pending'" json:"blockchain_status"`
	ProcessedAt        *time.Time `json:"processed_at,omitempty"`
	LastSync           *time.Time `json:"last_sync,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Disbursement) TableName() string { return "disbursements" }

// ValidateAmount holds on every create and update regardless of state.
func (d *Disbursement) ValidateAmount(approvedAmount float64) error {
	if d.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidAmount)
	}
	if d.Amount > approvedAmount {
		return fmt.Errorf("%w: amount %.2f exceeds approved amount %.2f", ErrInvalidAmount, d.Amount, approvedAmount)
	}
	return nil
}

// ComputeTotals sets interest = amount * rate / 100 and total = amount + interest.
func (d *Disbursement) ComputeTotals() {
	amt := decimal.NewFromFloat(d.Amount)
	interest := amt.Mul(decimal.NewFromFloat(d.InterestRate)).Div(decimal.NewFromInt(100)).Round(2)
	d.InterestAmount = interest.InexactFloat64()
	d.TotalAmount = amt.Add(interest).Round(2).InexactFloat64()
}

func (d *Disbursement) transition(to Status, from ...Status) error {
	for _, f := range from {
		if d.Status == f {
			d.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
}

func (d *Disbursement) Submit() error { return d.transition(StatusPending, StatusDraft) }

func (d *Disbursement) Approve(actor string, now time.Time) error {
	if err := d.transition(StatusApproved, StatusPending); err != nil {
		return err
	}
	t := now.UTC()
	d.ApprovedBy = actor
	d.ApprovedAt = &t
	return nil
}

func (d *Disbursement) Reject() error { return d.transition(StatusRejected, StatusPending) }

func (d *Disbursement) Cancel() error {
	return d.transition(StatusCancelled, StatusDraft, StatusPending)
}

func (d *Disbursement) BeginProcessing() error {
	return d.transition(StatusProcessing, StatusApproved)
}

// Receipt carries the identifiers returned by a successful transfer.
type Receipt struct {
	LoanID         string
	InvestmentID   string
	BlockchainTxID string
}

func (d *Disbursement) MarkDisbursed(r Receipt, now time.Time) error {
	if err := d.transition(StatusDisbursed, StatusProcessing); err != nil {
		return err
	}
	t := now.UTC()
	d.ProcessedAt = &t
	d.ServerLoanID = r.LoanID
	d.ServerInvestmentID = r.InvestmentID
	d.BlockchainTxID = r.BlockchainTxID
	d.BlockchainStatus = ChainConfirmed
	return nil
}

// Rollback returns a failed processing attempt to approved.
func (d *Disbursement) Rollback() error {
	if err := d.transition(StatusApproved, StatusProcessing); err != nil {
		return err
	}
	d.BlockchainStatus = ChainFailed
	return nil
}

func (s Status) Terminal() bool {
	return s == StatusDisbursed || s == StatusRejected || s == StatusCancelled
}

type NoteKind string

const (
	NoteInfo    NoteKind = "info"
	NoteFailure NoteKind = "failure"
)

// AuditNote is the disbursement's message trail.
type AuditNote struct {
	ID             uint64    `gorm:"primaryKey;column:id" json:"-"`
	DisbursementID uint64    `gorm:"index" json:"-"`
	Kind           NoteKind  `gorm:"size:16" json:"kind"`
	Message        string    `gorm:"type:text" json:"message"`
	Actor          string    `gorm:"size:32" json:"actor,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditNote) TableName() string { return "disbursement_notes" }
