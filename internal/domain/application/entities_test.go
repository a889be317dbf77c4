package application

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p2p-backoffice/internal/domain/status"
)

var day = time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

func newApp(st Status) *LoanApplication {
	return &LoanApplication{
		RequestedAmount: 12_000_000,
		InterestRate:    12,
		TermMonths:      12,
		ApplicationDate: day,
		Status:          st,
	}
}

func TestFromBridge(t *testing.T) {
	assert.Equal(t, StatusSubmitted, FromBridge.Map(status.Waiting))
	assert.Equal(t, StatusApproved, FromBridge.Map(status.Success))
	assert.Equal(t, StatusDisbursed, FromBridge.Map(status.Clean))
	assert.Equal(t, StatusRejected, FromBridge.Map(status.Fail))
	assert.Equal(t, StatusSubmitted, FromBridge.Map(status.Status("bogus")))
}

func TestValidate(t *testing.T) {
	a := newApp(StatusDraft)
	assert.NoError(t, a.Validate())

	a.RequestedAmount = 0
	assert.True(t, errors.Is(a.Validate(), ErrInvalidAmount))

	a = newApp(StatusDraft)
	a.ApprovedAmount = a.RequestedAmount + 1
	assert.True(t, errors.Is(a.Validate(), ErrInvalidAmount))

	a.ApprovedAmount = -1
	assert.True(t, errors.Is(a.Validate(), ErrInvalidAmount))
}

func TestRecompute(t *testing.T) {
	a := newApp(StatusDraft)
	require.NoError(t, a.Recompute())

	// month arithmetic follows time.AddDate normalisation
	assert.Equal(t, day.AddDate(0, 12, 0), a.DueDate)
	assert.Equal(t, 1_066_185.46, a.MonthlyPayment)
	assert.InDelta(t, 12_794_225.57, a.TotalPayable, 0.01)

	a.TermMonths = 0
	assert.Error(t, a.Recompute())
}

func TestRecompute_UsesApprovedAmountWhenSet(t *testing.T) {
	a := newApp(StatusDraft)
	a.InterestRate = 0
	a.ApprovedAmount = 6_000_000
	require.NoError(t, a.Recompute())
	assert.Equal(t, 500_000.0, a.MonthlyPayment)
}

func TestLifecycle_HappyPath(t *testing.T) {
	a := newApp(StatusDraft)
	require.NoError(t, a.Submit())
	require.NoError(t, a.StartReview())
	require.NoError(t, a.Approve("op", 0, day))
	assert.Equal(t, StatusApproved, a.Status)
	assert.Equal(t, a.RequestedAmount, a.ApprovedAmount)
	assert.Equal(t, "op", a.ApprovedBy)
	require.NotNil(t, a.ApprovalDate)

	require.NoError(t, a.CanRequestDisbursement())
	require.NoError(t, a.MarkDisbursed(day))
	require.NoError(t, a.Activate())
	require.NoError(t, a.Complete())
	assert.True(t, a.Status.Terminal())
}

func TestApprove_FromSubmittedWithPartialAmount(t *testing.T) {
	a := newApp(StatusSubmitted)
	require.NoError(t, a.Approve("op", 5_000_000, day))
	assert.Equal(t, 5_000_000.0, a.ApprovedAmount)

	b := newApp(StatusSubmitted)
	err := b.Approve("op", b.RequestedAmount*2, day)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestInvalidTransitions(t *testing.T) {
	cases := []struct {
		name string
		from Status
		do   func(a *LoanApplication) error
	}{
		{"submit twice", StatusSubmitted, (*LoanApplication).Submit},
		{"approve draft", StatusDraft, func(a *LoanApplication) error { return a.Approve("x", 0, day) }},
		{"reject approved", StatusApproved, func(a *LoanApplication) error { return a.Reject("no") }},
		{"disburse submitted", StatusSubmitted, (*LoanApplication).CanRequestDisbursement},
		{"activate approved", StatusApproved, (*LoanApplication).Activate},
		{"default disbursed", StatusDisbursed, (*LoanApplication).MarkDefaulted},
		{"complete rejected", StatusRejected, (*LoanApplication).Complete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newApp(tc.from)
			err := tc.do(a)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "got %v", err)
			assert.Equal(t, tc.from, a.Status)
		})
	}
}

func TestReject_KeepsReason(t *testing.T) {
	a := newApp(StatusUnderReview)
	require.NoError(t, a.Reject("income too low"))
	assert.Equal(t, StatusRejected, a.Status)
	assert.Equal(t, "income too low", a.RejectReason)
}

func TestDefault(t *testing.T) {
	a := newApp(StatusActive)
	require.NoError(t, a.MarkDefaulted())
	assert.True(t, a.Status.Terminal())
}

func TestApprove_RejectedAmountLeavesStateUntouched(t *testing.T) {
	a := newApp(StatusUnderReview)
	err := a.Approve("op", a.RequestedAmount+1, day)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	assert.Equal(t, StatusUnderReview, a.Status)
	assert.Zero(t, a.ApprovedAmount)
	assert.Nil(t, a.ApprovalDate)
}
