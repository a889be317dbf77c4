package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/domain/status"
)

type fakeLoans struct {
	loans   []mirror.ExternalLoan
	err     error
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeLoans) ListLoans(context.Context) ([]mirror.ExternalLoan, error) { return f.loans, f.err }

func (f *fakeLoans) ListLoansBetween(_ context.Context, from, to time.Time) ([]mirror.ExternalLoan, error) {
	f.gotFrom, f.gotTo = from, to
	var out []mirror.ExternalLoan
	for _, l := range f.loans {
		if l.CreatedAtSource == nil || l.CreatedAtSource.Before(from) || l.CreatedAtSource.After(to) {
			continue
		}
		out = append(out, l)
	}
	return out, f.err
}

func (f *fakeLoans) LatestLoans(_ context.Context, limit int) ([]mirror.ExternalLoan, error) {
	if limit < len(f.loans) {
		return f.loans[:limit], f.err
	}
	return f.loans, f.err
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func at(t time.Time) *time.Time { return &t }

func sampleLoans() []mirror.ExternalLoan {
	long := strings.Repeat("a", 35)
	return []mirror.ExternalLoan{
		{ContractID: "C1", BorrowerID: "u1", Capital: 1000, InterestRate: 10, Status: status.Waiting, Willing: "Mua xe", CreatedAtSource: at(day(2025, 1, 5))},
		{ContractID: "C2", BorrowerID: "u1", Capital: 2000, InterestRate: 0, Status: status.Success, Willing: "Mua xe", CreatedAtSource: at(day(2025, 1, 20))},
		{ContractID: "C3", BorrowerID: "u2", Capital: 3000, InterestRate: 14, Status: status.Clean, Willing: long, CreatedAtSource: at(day(2025, 3, 1))},
		{ContractID: "C4", BorrowerID: "u3", Capital: 500, InterestRate: 12, Status: status.Fail, CreatedAtSource: at(day(2025, 3, 31).Add(23 * time.Hour))},
		{ContractID: "C5", BorrowerID: "u4", Capital: 9999, Status: status.Clean, CreatedAtSource: at(day(2025, 5, 1))},
	}
}

func TestStats(t *testing.T) {
	repo := &fakeLoans{loans: sampleLoans()}
	u := NewUsecase(repo, zap.NewNop())

	st, err := u.Stats(context.Background(), day(2025, 1, 1), day(2025, 3, 31))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", st.From)
	assert.Equal(t, "2025-03-31", st.To)
	assert.Equal(t, 4, st.TotalLoans, "C4 late on the last day counts, C5 is outside")
	assert.Equal(t, 6500.0, st.TotalAmount)
	assert.Equal(t, 2, st.Active)
	assert.Equal(t, 2, st.Funded)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 1, st.Defaulted)
	assert.Equal(t, 66.67, st.FundingRate)
	assert.Equal(t, 50.0, st.DefaultRate)
	assert.Equal(t, 1625.0, st.AverageAmount)
	assert.Equal(t, 12.0, st.AverageInterestRate, "zero rates are excluded")
	assert.Equal(t, 3, st.TotalBorrowers)
	assert.Equal(t, 1, st.ActiveBorrowers)
	assert.Equal(t, map[string]int{"waiting": 1, "success": 1, "clean": 1, "fail": 1}, st.ByStatus)

	assert.Equal(t, []LabelCount{
		{Label: "Mua xe", Count: 2},
		{Label: "Khác", Count: 1},
		{Label: strings.Repeat("a", 27) + "...", Count: 1},
	}, st.ByPurpose)

	assert.Equal(t, []MonthPoint{
		{Month: "1/2025", Count: 2, Amount: 3000},
		{Month: "2/2025", Count: 0, Amount: 0},
		{Month: "3/2025", Count: 2, Amount: 3500},
	}, st.MonthlyTrend)
}

func TestStats_FundingRateZeroWithoutWaiting(t *testing.T) {
	repo := &fakeLoans{loans: sampleLoans()[2:4]}
	st, err := NewUsecase(repo, nil).Stats(context.Background(), day(2025, 1, 1), day(2025, 12, 31))
	require.NoError(t, err)
	assert.Zero(t, st.FundingRate)
	assert.Len(t, st.MonthlyTrend, 12)
}

func TestStats_EmptyWindow(t *testing.T) {
	st, err := NewUsecase(&fakeLoans{}, nil).Stats(context.Background(), day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	assert.Zero(t, st.TotalLoans)
	assert.Zero(t, st.DefaultRate)
	assert.Zero(t, st.AverageAmount)
	assert.Empty(t, st.ByPurpose)
	assert.Equal(t, []MonthPoint{{Month: "1/2024"}}, st.MonthlyTrend)
}

func TestStats_DefaultWindow(t *testing.T) {
	repo := &fakeLoans{}
	u := NewUsecase(repo, nil)
	u.now = func() time.Time { return time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC) }

	st, err := u.Stats(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", st.From, "July 1st minus 180 days")
	assert.Equal(t, "2025-07-15", st.To)
	assert.Equal(t, day(2025, 1, 2), repo.gotFrom)
	assert.Equal(t, day(2025, 7, 16).Add(-time.Nanosecond), repo.gotTo)
}

func TestStats_RepositoryError(t *testing.T) {
	_, err := NewUsecase(&fakeLoans{err: errors.New("db down")}, nil).Stats(context.Background(), day(2025, 1, 1), day(2025, 1, 2))
	assert.EqualError(t, err, "db down")
}

func TestPublicLoans(t *testing.T) {
	loans := sampleLoans()
	loans[0].CreatedDate = at(day(2025, 1, 5))
	loans[0].TermMonths = 6
	u := NewUsecase(&fakeLoans{loans: loans}, nil)

	out, err := u.PublicLoans(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, "C1", out[0].Name)
	assert.Equal(t, "u1", out[0].Borrower)
	assert.Equal(t, 6, out[0].Term)
	require.NotNil(t, out[0].StartDate)
	assert.Equal(t, "2025-01-05", *out[0].StartDate)
	assert.Nil(t, out[1].StartDate)

	out, err = u.PublicLoans(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
