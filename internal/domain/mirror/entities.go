package mirror

import (
	"context"
	"errors"
	"strings"
	"time"

	"p2p-backoffice/internal/domain/status"
)

var (
	ErrSyncInProgress = errors.New("sync pass already running")
	ErrMissingKey     = errors.New("document has no external id")
)

// Document is one externally sourced record after decoding, keyed by the
// source's own field names. Nested objects are Document or map[string]any.
type Document map[string]any

// Lookup resolves a dotted path ("info.capital").
func (d Document) Lookup(path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		var m map[string]any
		switch v := cur.(type) {
		case map[string]any:
			m = v
		case Document:
			m = v
		default:
			return nil, false
		}
		next, ok := m[part]
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// First returns the first present value among paths.
func (d Document) First(paths ...string) (any, bool) {
	for _, p := range paths {
		if v, ok := d.Lookup(p); ok {
			return v, true
		}
	}
	return nil, false
}

// Source yields the documents a mirror pass reconciles.
type Source interface {
	Name() string
	Wallets(ctx context.Context) ([]Document, error)
	Loans(ctx context.Context) ([]Document, error)
}

type Wallet struct {
	ID          uint64     `gorm:"primaryKey;column:id" json:"-"`
	UserID      string     `gorm:"size:64;uniqueIndex" json:"user_id"`
	Balance     float64    `gorm:"type:decimal(20,6)" json:"balance"`
	Currency    string     `gorm:"size:16" json:"currency"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	LastSync    *time.Time `json:"last_sync,omitempty"`
}

func (Wallet) TableName() string { return "mirror_wallets" }

// ExternalLoan is the local projection of a lending-server loan contract.
// Rows are owned by the mirror and replaced on every pass.
type ExternalLoan struct {
	ID                  uint64        `gorm:"primaryKey;column:id" json:"-"`
	ContractID          string        `gorm:"size:64;uniqueIndex" json:"contract_id"`
	BorrowerID          string        `gorm:"size:64;index" json:"borrower_id"`
	BorrowerName        string        `gorm:"size:128" json:"borrower_name,omitempty"`
	BorrowerPhone       string        `gorm:"size:32" json:"borrower_phone,omitempty"`
	Capital             float64       `gorm:"type:decimal(18,2)" json:"capital"`
	InterestRate        float64       `gorm:"type:decimal(8,4)" json:"interest_rate"`
	TermMonths          int           `json:"term_months"`
	Status              status.Status `gorm:"size:16;index" json:"status"`
	Willing             string        `gorm:"type:text" json:"willing,omitempty"`
	Description         string        `gorm:"type:text" json:"description,omitempty"`
	MaturityDate        *time.Time    `json:"maturity_date,omitempty"`
	CreatedDate         *time.Time    `json:"created_date,omitempty"`
	MonthlyPrincipalPay float64       `gorm:"type:decimal(18,2)" json:"monthly_principal_pay"`
	MonthlyInterestPay  float64       `gorm:"type:decimal(18,2)" json:"monthly_interest_pay"`
	MonthlyPay          float64       `gorm:"type:decimal(18,2)" json:"monthly_pay"`
	EntirelyPay         float64       `gorm:"type:decimal(18,2)" json:"entirely_pay"`
	TotalNotes          int           `json:"total_notes"`
	InvestedNotes       int           `json:"invested_notes"`
	CreatedAtSource     *time.Time    `gorm:"index" json:"created_at,omitempty"`
	LastSync            *time.Time    `json:"last_sync,omitempty"`
}

func (ExternalLoan) TableName() string { return "mirror_loans" }

// AsDocument exposes a mirrored row to the import schemas.
func (l ExternalLoan) AsDocument() Document {
	doc := Document{
		"contract_id":   l.ContractID,
		"borrower":      map[string]any{"id": l.BorrowerID, "name": l.BorrowerName, "phone": l.BorrowerPhone},
		"capital":       l.Capital,
		"interest_rate": l.InterestRate,
		"term_months":   l.TermMonths,
		"status":        string(l.Status),
		"willing":       l.Willing,
		"description":   l.Description,
	}
	if l.CreatedDate != nil {
		doc["created_date"] = *l.CreatedDate
	}
	if l.MaturityDate != nil {
		doc["maturity_date"] = *l.MaturityDate
	}
	return doc
}

// Party is a borrower or investor known to the back-office.
type Party struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Phone     string    `gorm:"size:32;index" json:"phone,omitempty"`
	Email     string    `gorm:"size:128" json:"email,omitempty"`
	Ref       string    `gorm:"size:64;index" json:"ref,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Party) TableName() string { return "parties" }

// PartyRef describes a borrower as an external source knows it.
type PartyRef struct {
	ID    string
	Name  string
	Phone string
}

const UnknownPartyName = "Unknown"
