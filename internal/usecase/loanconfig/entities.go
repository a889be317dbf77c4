package loanconfig

import domain "p2p-backoffice/internal/domain/loanconfig"

type PublicConfig struct {
	Name             string        `json:"name"`
	Limits           domain.Limits `json:"limits"`
	BaseInterestRate float64       `json:"base_interest_rate"`
	MaxInterestRate  float64       `json:"max_interest_rate"`
	Fees             domain.Fees   `json:"fees"`
}

type CreateLoanTypeInput struct {
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	Description    string  `json:"description"`
	InterestRate   float64 `json:"interest_rate"`
	TermMonths     int     `json:"term_months"`
	MinAmount      float64 `json:"min_amount"`
	MaxAmount      float64 `json:"max_amount"`
	ServiceFeeRate float64 `json:"service_fee_rate"`
	LateFeeRate    float64 `json:"late_fee_rate"`
}

// snapshot is the body pushed to the lending server on config sync.
type snapshot struct {
	ExternalID             string  `json:"external_id"`
	Name                   string  `json:"name"`
	MinLoanAmount          float64 `json:"min_loan_amount"`
	MaxLoanAmount          float64 `json:"max_loan_amount"`
	BaseInterestRate       float64 `json:"base_interest_rate"`
	MaxInterestRate        float64 `json:"max_interest_rate"`
	ServiceFeeRate         float64 `json:"service_fee_rate"`
	LateFeeRate            float64 `json:"late_fee_rate"`
	ProcessingFee          float64 `json:"processing_fee"`
	AutoApprovalLimit      float64 `json:"auto_approval_limit"`
	MaxConcurrentLoans     int     `json:"max_concurrent_loans"`
	RiskFactor             float64 `json:"risk_factor"`
	CreditScoreFactor      float64 `json:"credit_score_factor"`
	LoanTermFactor         float64 `json:"loan_term_factor"`
	CollateralFactor       float64 `json:"collateral_factor"`
	EarlyRepaymentDiscount float64 `json:"early_repayment_discount"`
	LatePaymentPenalty     float64 `json:"late_payment_penalty"`
	FactorConstant         float64 `json:"factor_constant"`
}
