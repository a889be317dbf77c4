package rate

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"p2p-backoffice/internal/domain/loanconfig"
)

var (
	ErrNoConfiguration = errors.New("rate: active configuration required")
	ErrInvalidFactor   = errors.New("rate: risk factor must be greater than 0")
	ErrInvalidTerm     = fmt.Errorf("rate: term must be between 1 and %d months", MaxTermMonths)
	ErrInvalidRate     = errors.New("rate: annual rate must not be negative")
	ErrOutOfRange      = errors.New("rate: payment is out of range")
)

// MaxTermMonths bounds every term accepted by the calculators.
const MaxTermMonths = 360

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const goodCreditScore = 700

// Profile holds the borrower attributes that move the base rate.
// Nil pointers mean "not provided".
type Profile struct {
	CreditScore   *int
	TermMonths    *int
	HasCollateral bool
	RiskLevel     RiskLevel
}

// AdjustedRate applies the configuration's multiplicative factors to its
// base rate and clamps the result to MaxInterestRate.
func AdjustedRate(cfg *loanconfig.Configuration, p Profile) (float64, error) {
	if cfg == nil {
		return 0, ErrNoConfiguration
	}
	if cfg.RiskFactor <= 0 {
		return 0, ErrInvalidFactor
	}

	r := decimal.NewFromFloat(cfg.BaseInterestRate)
	if p.CreditScore != nil && *p.CreditScore >= goodCreditScore {
		r = r.Mul(decimal.NewFromFloat(cfg.CreditScoreFactor))
	}
	if p.TermMonths != nil && *p.TermMonths > 12 {
		r = r.Mul(decimal.NewFromFloat(cfg.LoanTermFactor))
	}
	if p.HasCollateral {
		r = r.Mul(decimal.NewFromFloat(cfg.CollateralFactor))
	}
	switch p.RiskLevel {
	case RiskHigh:
		r = r.Mul(decimal.NewFromFloat(cfg.RiskFactor))
	case RiskLow:
		r = r.Div(decimal.NewFromFloat(cfg.RiskFactor))
	}

	r = decimal.Min(r.Round(4), decimal.NewFromFloat(cfg.MaxInterestRate))
	return r.InexactFloat64(), nil
}

func validate(annualRatePct float64, termMonths int) error {
	if termMonths <= 0 || termMonths > MaxTermMonths {
		return ErrInvalidTerm
	}
	if annualRatePct < 0 || math.IsNaN(annualRatePct) || math.IsInf(annualRatePct, 0) {
		return ErrInvalidRate
	}
	return nil
}

// MonthlyPayment is the fixed annuity installment, unrounded.
//
//	r       = annualRatePct / 100 / 12
//	payment = P * r / (1 - (1+r)^-n)   (r > 0)
//	payment = P / n                     (r == 0)
func MonthlyPayment(principal, annualRatePct float64, termMonths int) (float64, error) {
	if err := validate(annualRatePct, termMonths); err != nil {
		return 0, err
	}
	r := annualRatePct / 100 / 12
	n := float64(termMonths)
	pay := principal / n
	if r > 0 {
		pay = principal * r / (1 - math.Pow(1+r, -n))
	}
	if math.IsNaN(pay) || math.IsInf(pay, 0) {
		return 0, ErrOutOfRange
	}
	return pay, nil
}

type Summary struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalInterest  float64 `json:"total_interest"`
	TotalPayable   float64 `json:"total_payable"`
}

// Summarize rounds each figure to 2 decimals the way it is stored.
func Summarize(principal, annualRatePct float64, termMonths int) (Summary, error) {
	pay, err := MonthlyPayment(principal, annualRatePct, termMonths)
	if err != nil {
		return Summary{}, err
	}
	p := decimal.NewFromFloat(principal)
	payDec := decimal.NewFromFloat(pay)
	interest := payDec.Mul(decimal.NewFromInt(int64(termMonths))).Sub(p)
	return Summary{
		MonthlyPayment: payDec.Round(2).InexactFloat64(),
		TotalInterest:  interest.Round(2).InexactFloat64(),
		TotalPayable:   p.Add(interest).Round(2).InexactFloat64(),
	}, nil
}

type Installment struct {
	Period    int       `json:"period"`
	DueDate   time.Time `json:"due_date"`
	Payment   float64   `json:"payment"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Balance   float64   `json:"balance"`
}

// Schedule splits every installment into principal and interest. The last
// period absorbs rounding so the balance lands on zero.
func Schedule(principal, annualRatePct float64, termMonths int, start time.Time) ([]Installment, error) {
	pay, err := MonthlyPayment(principal, annualRatePct, termMonths)
	if err != nil {
		return nil, err
	}
	monthly := decimal.NewFromFloat(annualRatePct).Div(decimal.NewFromInt(1200))
	payment := decimal.NewFromFloat(pay).Round(2)
	remaining := decimal.NewFromFloat(principal)

	out := make([]Installment, 0, termMonths)
	for period := 1; period <= termMonths; period++ {
		interest := remaining.Mul(monthly).Round(2)
		principalPart := payment.Sub(interest)
		if period == termMonths {
			principalPart = remaining
			payment = principalPart.Add(interest)
		}
		remaining = remaining.Sub(principalPart)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		out = append(out, Installment{
			Period:    period,
			DueDate:   start.AddDate(0, period, 0),
			Payment:   payment.InexactFloat64(),
			Principal: principalPart.InexactFloat64(),
			Interest:  interest.InexactFloat64(),
			Balance:   remaining.InexactFloat64(),
		})
	}
	return out, nil
}

// Quote bundles the adjusted rate with its repayment summary.
type Quote struct {
	Rate float64 `json:"interest_rate"`
	Summary
}

func NewQuote(cfg *loanconfig.Configuration, p Profile, principal float64, termMonths int) (Quote, error) {
	r, err := AdjustedRate(cfg, p)
	if err != nil {
		return Quote{}, err
	}
	s, err := Summarize(principal, r, termMonths)
	if err != nil {
		return Quote{}, fmt.Errorf("summarize: %w", err)
	}
	return Quote{Rate: r, Summary: s}, nil
}
