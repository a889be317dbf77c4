package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/domain/status"
	"p2p-backoffice/internal/infrastructure/logger"
)

const (
	DefaultPublicLimit = 10
	maxPublicLimit     = 100

	otherPurpose  = "Khác"
	purposeMaxLen = 30
)

type Usecase struct {
	loans mirror.LoanRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewUsecase(loans mirror.LoanRepository, log *zap.Logger) *Usecase {
	return &Usecase{loans: loans, log: logger.OrNop(log), now: time.Now}
}

// DefaultWindow starts 180 days before the first of the current month and
// ends today.
func DefaultWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -180), today
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func purposeLabel(s string) string {
	if s == "" {
		return otherPurpose
	}
	if utf8.RuneCountInString(s) < purposeMaxLen {
		return s
	}
	return string([]rune(s)[:purposeMaxLen-3]) + "..."
}

func monthLabel(t time.Time) string { return fmt.Sprintf("%d/%d", int(t.Month()), t.Year()) }

// Stats computes the dashboard over [from, to]; both are calendar days and
// zero values fall back to DefaultWindow.
func (u *Usecase) Stats(ctx context.Context, from, to time.Time) (Stats, error) {
	defFrom, defTo := DefaultWindow(u.now())
	if from.IsZero() {
		from = defFrom
	}
	if to.IsZero() {
		to = defTo
	}
	if to.Before(from) {
		from, to = to, from
	}
	// to is inclusive of the whole day
	loans, err := u.loans.ListLoansBetween(ctx, from, to.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		ByStatus: map[string]int{},
	}

	var (
		total       = decimal.Zero
		rateSum     float64
		rateN       int
		borrowers   = map[string]struct{}{}
		activeBorr  = map[string]struct{}{}
		purposes    = map[string]int{}
		trendCount  = map[string]int{}
		trendAmount = map[string]decimal.Decimal{}
	)

	for _, l := range loans {
		st.TotalLoans++
		total = total.Add(decimal.NewFromFloat(l.Capital))
		if l.InterestRate != 0 {
			rateSum += l.InterestRate
			rateN++
		}
		st.ByStatus[string(l.Status)]++

		switch l.Status {
		case status.Waiting, status.Success:
			st.Active++
		}
		switch l.Status {
		case status.Success, status.Clean:
			st.Funded++
		}
		if l.Status == status.Clean {
			st.Completed++
		}
		if l.Status == status.Fail {
			st.Defaulted++
		}

		if l.BorrowerID != "" {
			borrowers[l.BorrowerID] = struct{}{}
			if l.Status == status.Waiting || l.Status == status.Success {
				activeBorr[l.BorrowerID] = struct{}{}
			}
		}
		purposes[purposeLabel(l.Willing)]++

		if l.CreatedAtSource != nil {
			m := monthLabel(l.CreatedAtSource.UTC())
			trendCount[m]++
			trendAmount[m] = trendAmount[m].Add(decimal.NewFromFloat(l.Capital))
		}
	}

	st.TotalAmount = total.Round(2).InexactFloat64()
	if st.TotalLoans > 0 {
		st.AverageAmount = total.Div(decimal.NewFromInt(int64(st.TotalLoans))).Round(2).InexactFloat64()
	}
	if rateN > 0 {
		st.AverageInterestRate = round2(rateSum / float64(rateN))
	}
	if waiting := st.ByStatus[string(status.Waiting)]; waiting > 0 {
		st.FundingRate = percent(st.Funded, st.Funded+waiting)
	}
	st.DefaultRate = percent(st.Defaulted, st.Completed+st.Defaulted)
	st.TotalBorrowers = len(borrowers)
	st.ActiveBorrowers = len(activeBorr)

	st.ByPurpose = make([]LabelCount, 0, len(purposes))
	for label, n := range purposes {
		st.ByPurpose = append(st.ByPurpose, LabelCount{Label: label, Count: n})
	}
	sort.Slice(st.ByPurpose, func(i, j int) bool {
		if st.ByPurpose[i].Count != st.ByPurpose[j].Count {
			return st.ByPurpose[i].Count > st.ByPurpose[j].Count
		}
		return st.ByPurpose[i].Label < st.ByPurpose[j].Label
	})

	st.MonthlyTrend = []MonthPoint{}
	for m := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(to); m = m.AddDate(0, 1, 0) {
		label := monthLabel(m)
		st.MonthlyTrend = append(st.MonthlyTrend, MonthPoint{
			Month:  label,
			Count:  trendCount[label],
			Amount: trendAmount[label].Round(2).InexactFloat64(),
		})
	}

	u.log.Debug("dashboard stats computed", zap.String("from", st.From), zap.String("to", st.To), zap.Int("loans", st.TotalLoans))
	return st, nil
}

// PublicLoans lists the most recent mirrored loans for the website.
func (u *Usecase) PublicLoans(ctx context.Context, limit int) ([]PublicLoan, error) {
	if limit <= 0 {
		limit = DefaultPublicLimit
	}
	if limit > maxPublicLimit {
		limit = maxPublicLimit
	}
	loans, err := u.loans.LatestLoans(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]PublicLoan, 0, len(loans))
	for _, l := range loans {
		p := PublicLoan{
			Name:         l.ContractID,
			Borrower:     l.BorrowerID,
			Amount:       l.Capital,
			InterestRate: l.InterestRate,
			Term:         l.TermMonths,
		}
		if l.CreatedDate != nil {
			d := l.CreatedDate.Format("2006-01-02")
			p.StartDate = &d
		}
		out = append(out, p)
	}
	return out, nil
}
