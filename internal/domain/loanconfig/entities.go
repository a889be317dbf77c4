package loanconfig

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoActiveConfig = errors.New("no active loan configuration")
	ErrInvalidConfig  = errors.New("invalid loan configuration")
	ErrInvalidType    = errors.New("invalid loan type")
	ErrNotFound       = errors.New("loan type not found")
)

type Configuration struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"id"`
	Name       string `gorm:"size:128;not null" json:"name"`
	Active     bool   `gorm:"index" json:"active"`
	ExternalID string `gorm:"size:64" json:"external_id"`

	MinLoanAmount    float64 `gorm:"type:decimal(18,2)" json:"min_loan_amount"`
	MaxLoanAmount    float64 `gorm:"type:decimal(18,2)" json:"max_loan_amount"`
	BaseInterestRate float64 `gorm:"type:decimal(8,4)" json:"base_interest_rate"`
	MaxInterestRate  float64 `gorm:"type:decimal(8,4)" json:"max_interest_rate"`

	ServiceFeeRate float64 `gorm:"type:decimal(8,4)" json:"service_fee_rate"`
	LateFeeRate    float64 `gorm:"type:decimal(8,4)" json:"late_fee_rate"`
	ProcessingFee  float64 `gorm:"type:decimal(18,2)" json:"processing_fee"`

	ServerAPIURL string `gorm:"size:255" json:"server_api_url"`
	ServerAPIKey string `gorm:"size:255" json:"-"`
	SyncInterval int    `json:"sync_interval"`

	AutoApprovalLimit  float64 `gorm:"type:decimal(18,2)" json:"auto_approval_limit"`
	MaxConcurrentLoans int     `json:"max_concurrent_loans"`

	RiskFactor        float64 `gorm:"type:decimal(8,4)" json:"risk_factor"`
	CreditScoreFactor float64 `gorm:"type:decimal(8,4)" json:"credit_score_factor"`
	LoanTermFactor    float64 `gorm:"type:decimal(8,4)" json:"loan_term_factor"`
	CollateralFactor  float64 `gorm:"type:decimal(8,4)" json:"collateral_factor"`

	EarlyRepaymentDiscount float64 `gorm:"type:decimal(8,4)" json:"early_repayment_discount"`
	LatePaymentPenalty     float64 `gorm:"type:decimal(8,4)" json:"late_payment_penalty"`
	FactorConstant         float64 `gorm:"type:decimal(8,4)" json:"factor_constant"`

	EmailNotifications bool `json:"email_notifications"`
	SMSNotifications   bool `gorm:"column:sms_notifications" json:"sms_notifications"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Configuration) TableName() string { return "loan_configurations" }

// Defaults returns an active configuration with the stock business values.
func Defaults(name string) *Configuration {
	return &Configuration{
		Name:                   name,
		Active:                 true,
		MinLoanAmount:          1_000_000,
		MaxLoanAmount:          1_000_000_000,
		BaseInterestRate:       12,
		MaxInterestRate:        36,
		ServiceFeeRate:         5,
		LateFeeRate:            2,
		ProcessingFee:          50_000,
		ServerAPIURL:           "http://192.168.1.6:3000",
		SyncInterval:           30,
		AutoApprovalLimit:      5_000_000,
		MaxConcurrentLoans:     3,
		RiskFactor:             1.2,
		CreditScoreFactor:      0.8,
		LoanTermFactor:         1.1,
		CollateralFactor:       0.9,
		EarlyRepaymentDiscount: 2,
		LatePaymentPenalty:     5,
		FactorConstant:         1,
		EmailNotifications:     true,
	}
}

func (c *Configuration) Validate() error {
	switch {
	case c.MinLoanAmount <= 0:
		return fmt.Errorf("%w: min loan amount must be greater than 0", ErrInvalidConfig)
	case c.MaxLoanAmount <= c.MinLoanAmount:
		return fmt.Errorf("%w: max loan amount must be greater than min loan amount", ErrInvalidConfig)
	case c.BaseInterestRate < 0:
		return fmt.Errorf("%w: base interest rate must not be negative", ErrInvalidConfig)
	case c.MaxInterestRate < c.BaseInterestRate:
		return fmt.Errorf("%w: max interest rate must be >= base interest rate", ErrInvalidConfig)
	case c.RiskFactor <= 0:
		return fmt.Errorf("%w: risk factor must be greater than 0", ErrInvalidConfig)
	}
	return nil
}

type ServerEndpoint struct {
	URL          string `json:"url"`
	APIKey       string `json:"-"`
	SyncInterval int    `json:"sync_interval"`
}

type Limits struct {
	Min                float64 `json:"min_loan_amount"`
	Max                float64 `json:"max_loan_amount"`
	AutoApprovalLimit  float64 `json:"auto_approval_limit"`
	MaxConcurrentLoans int     `json:"max_concurrent_loans"`
}

type Fees struct {
	ServiceFeeRate float64 `json:"service_fee_rate"`
	LateFeeRate    float64 `json:"late_fee_rate"`
	ProcessingFee  float64 `json:"processing_fee"`
}

type Factors struct {
	Risk        float64 `json:"risk_factor"`
	CreditScore float64 `json:"credit_score_factor"`
	LoanTerm    float64 `json:"loan_term_factor"`
	Collateral  float64 `json:"collateral_factor"`
}

func (c *Configuration) Server() ServerEndpoint {
	return ServerEndpoint{URL: c.ServerAPIURL, APIKey: c.ServerAPIKey, SyncInterval: c.SyncInterval}
}

func (c *Configuration) Limits() Limits {
	return Limits{
		Min:                c.MinLoanAmount,
		Max:                c.MaxLoanAmount,
		AutoApprovalLimit:  c.AutoApprovalLimit,
		MaxConcurrentLoans: c.MaxConcurrentLoans,
	}
}

func (c *Configuration) Fees() Fees {
	return Fees{ServiceFeeRate: c.ServiceFeeRate, LateFeeRate: c.LateFeeRate, ProcessingFee: c.ProcessingFee}
}

func (c *Configuration) Factors() Factors {
	return Factors{
		Risk:        c.RiskFactor,
		CreditScore: c.CreditScoreFactor,
		LoanTerm:    c.LoanTermFactor,
		Collateral:  c.CollateralFactor,
	}
}

// InLimits reports whether amount lies in [Min, Max].
func (l Limits) InLimits(amount float64) bool { return amount >= l.Min && amount <= l.Max }

type LoanType struct {
	ID             uint64    `gorm:"primaryKey;column:id" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	Code           string    `gorm:"size:32;uniqueIndex" json:"code"`
	Description    string    `gorm:"type:text" json:"description"`
	InterestRate   float64   `gorm:"type:decimal(8,4)" json:"interest_rate"`
	TermMonths     int       `json:"term_months"`
	MinAmount      float64   `gorm:"type:decimal(18,2)" json:"min_amount"`
	MaxAmount      float64   `gorm:"type:decimal(18,2)" json:"max_amount"`
	ServiceFeeRate float64   `gorm:"type:decimal(8,4)" json:"service_fee_rate"`
	LateFeeRate    float64   `gorm:"type:decimal(8,4)" json:"late_fee_rate"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LoanType) TableName() string { return "loan_types" }

// DefaultLoanType is created on demand when importing loans and no type exists.
func DefaultLoanType() *LoanType {
	return &LoanType{Name: "Default", Code: "DEFAULT", InterestRate: 0, TermMonths: 12, ServiceFeeRate: 5, LateFeeRate: 2, Active: true}
}

func (t *LoanType) Validate() error {
	switch {
	case t.Name == "" || t.Code == "":
		return fmt.Errorf("%w: name and code are required", ErrInvalidType)
	case t.InterestRate < 0:
		return fmt.Errorf("%w: interest rate must not be negative", ErrInvalidType)
	case t.TermMonths <= 0:
		return fmt.Errorf("%w: term must be greater than 0", ErrInvalidType)
	case t.MinAmount > 0 && t.MaxAmount > 0 && t.MinAmount > t.MaxAmount:
		return fmt.Errorf("%w: min amount must not exceed max amount", ErrInvalidType)
	}
	return nil
}
