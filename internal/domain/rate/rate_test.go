package rate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p2p-backoffice/internal/domain/loanconfig"
)

func intp(v int) *int { return &v }

func scenarioConfig() *loanconfig.Configuration {
	c := loanconfig.Defaults("scenario")
	c.BaseInterestRate = 12
	c.MaxInterestRate = 36
	c.RiskFactor = 1.2
	return c
}

func TestAdjustedRate_RiskScenario(t *testing.T) {
	cfg := scenarioConfig()

	high, err := AdjustedRate(cfg, Profile{RiskLevel: RiskHigh})
	require.NoError(t, err)
	assert.Equal(t, 14.4, high)

	low, err := AdjustedRate(cfg, Profile{RiskLevel: RiskLow})
	require.NoError(t, err)
	assert.Equal(t, 10.0, low)

	medium, err := AdjustedRate(cfg, Profile{RiskLevel: RiskMedium})
	require.NoError(t, err)
	assert.Equal(t, 12.0, medium)
}

func TestAdjustedRate_Factors(t *testing.T) {
	cfg := scenarioConfig()

	// 12 * 0.8 * 1.1 * 0.9 = 9.504
	got, err := AdjustedRate(cfg, Profile{CreditScore: intp(720), TermMonths: intp(24), HasCollateral: true})
	require.NoError(t, err)
	assert.Equal(t, 9.504, got)

	// thresholds are strict/inclusive as documented
	got, err = AdjustedRate(cfg, Profile{CreditScore: intp(699), TermMonths: intp(12)})
	require.NoError(t, err)
	assert.Equal(t, 12.0, got)

	got, err = AdjustedRate(cfg, Profile{CreditScore: intp(700)})
	require.NoError(t, err)
	assert.Equal(t, 9.6, got)
}

func TestAdjustedRate_ClampsToMax(t *testing.T) {
	cfg := scenarioConfig()
	cfg.BaseInterestRate = 35
	cfg.RiskFactor = 3

	got, err := AdjustedRate(cfg, Profile{RiskLevel: RiskHigh, TermMonths: intp(36)})
	require.NoError(t, err)
	assert.Equal(t, 36.0, got)
}

func TestAdjustedRate_NeverExceedsMax(t *testing.T) {
	bases := []float64{0, 5, 12, 20, 30, 36}
	factors := []float64{0.5, 0.8, 1, 1.1, 1.5, 2.5}
	risks := []RiskLevel{RiskLow, RiskMedium, RiskHigh, ""}
	for _, b := range bases {
		for _, f := range factors {
			for _, rl := range risks {
				cfg := scenarioConfig()
				cfg.BaseInterestRate = b
				cfg.RiskFactor = f
				cfg.LoanTermFactor = f
				cfg.CollateralFactor = f
				cfg.CreditScoreFactor = f
				got, err := AdjustedRate(cfg, Profile{CreditScore: intp(800), TermMonths: intp(48), HasCollateral: true, RiskLevel: rl})
				require.NoError(t, err)
				assert.LessOrEqual(t, got, cfg.MaxInterestRate)
			}
		}
	}
}

func TestAdjustedRate_Errors(t *testing.T) {
	_, err := AdjustedRate(nil, Profile{})
	assert.True(t, errors.Is(err, ErrNoConfiguration))

	cfg := scenarioConfig()
	cfg.RiskFactor = 0
	_, err = AdjustedRate(cfg, Profile{RiskLevel: RiskLow})
	assert.True(t, errors.Is(err, ErrInvalidFactor))
}

func TestMonthlyPayment_AnnuityScenario(t *testing.T) {
	r := 12.0 / 100 / 12
	factor := math.Pow(1+r, 12)
	want := 12_000_000 * r * factor / (factor - 1)

	got, err := MonthlyPayment(12_000_000, 12, 12)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-6)
	assert.InDelta(t, 1_066_185.46, got, 0.01)
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	for _, n := range []int{1, 3, 7, 12, 36} {
		got, err := MonthlyPayment(1_000_000, 0, n)
		require.NoError(t, err)
		assert.Equal(t, 1_000_000/float64(n), got)
	}
}

func TestMonthlyPayment_RejectsBadInput(t *testing.T) {
	_, err := MonthlyPayment(1000, 12, 0)
	assert.True(t, errors.Is(err, ErrInvalidTerm))
	_, err = MonthlyPayment(1000, 12, -3)
	assert.True(t, errors.Is(err, ErrInvalidTerm))
	_, err = MonthlyPayment(1000, -1, 12)
	assert.True(t, errors.Is(err, ErrInvalidRate))
	_, err = MonthlyPayment(1000, math.Inf(1), 12)
	assert.True(t, errors.Is(err, ErrInvalidRate))
}

func TestMonthlyPayment_LongTerms(t *testing.T) {
	got, err := MonthlyPayment(1000, 12, MaxTermMonths)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
	assert.Greater(t, got, 1000*0.01)

	for _, n := range []int{MaxTermMonths + 1, 100_000} {
		_, err := MonthlyPayment(1000, 12, n)
		assert.ErrorIs(t, err, ErrInvalidTerm, "term %d", n)
	}

	_, err = MonthlyPayment(math.MaxFloat64, 1e6, 12)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSummarizeAndQuote_RejectLongTermWithoutPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := Summarize(1000, 12, 100_000)
		assert.ErrorIs(t, err, ErrInvalidTerm)
	})
	assert.NotPanics(t, func() {
		_, err := NewQuote(scenarioConfig(), Profile{}, 1000, 100_000)
		assert.ErrorIs(t, err, ErrInvalidTerm)
	})
	assert.NotPanics(t, func() {
		_, err := Schedule(1000, 12, 100_000, time.Now())
		assert.ErrorIs(t, err, ErrInvalidTerm)
	})
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(12_000_000, 12, 12)
	require.NoError(t, err)
	assert.Equal(t, 1_066_185.46, s.MonthlyPayment)
	assert.InDelta(t, 794_225.5, s.TotalInterest, 0.1)
	assert.InDelta(t, s.TotalPayable, 12_000_000+s.TotalInterest, 0.01)

	zero, err := Summarize(1200, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, Summary{MonthlyPayment: 100, TotalInterest: 0, TotalPayable: 1200}, zero)

	_, err = Summarize(1200, 10, 0)
	assert.Error(t, err)
}

func TestSchedule_BalanceReachesZero(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	rows, err := Schedule(12_000_000, 12, 12, start)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	assert.Equal(t, 1, rows[0].Period)
	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), rows[0].DueDate)
	assert.Equal(t, 120_000.0, rows[0].Interest)
	assert.Equal(t, 0.0, rows[11].Balance)

	var principal float64
	for _, r := range rows {
		principal += r.Principal
	}
	assert.InDelta(t, 12_000_000, principal, 0.01)
}

func TestNewQuote(t *testing.T) {
	q, err := NewQuote(scenarioConfig(), Profile{RiskLevel: RiskHigh}, 10_000_000, 12)
	require.NoError(t, err)
	assert.Equal(t, 14.4, q.Rate)
	assert.Greater(t, q.MonthlyPayment, 10_000_000.0/12)

	_, err = NewQuote(nil, Profile{}, 1, 12)
	assert.True(t, errors.Is(err, ErrNoConfiguration))
}
