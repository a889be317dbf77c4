package loanconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	domain "p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/testutil/loanconfigmock"
)

type fakeRemote struct {
	healthErr error
	syncID    string
	syncErr   error
	gotEP     domain.ServerEndpoint
	gotBody   any
}

func (f *fakeRemote) Health(_ context.Context, ep domain.ServerEndpoint) error {
	f.gotEP = ep
	return f.healthErr
}

func (f *fakeRemote) SyncConfig(_ context.Context, ep domain.ServerEndpoint, body any) (string, error) {
	f.gotEP = ep
	f.gotBody = body
	return f.syncID, f.syncErr
}

func withID(c *domain.Configuration, id uint64) domain.Configuration {
	c.ID = id
	return *c
}

func TestActive_NoneConfigured(t *testing.T) {
	p := NewProvider(loanconfigmock.Active(), &fakeRemote{}, nil)
	_, err := p.Active(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActiveConfig)
}

func TestActive_LowestIDWinsAndWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := loanconfigmock.Active(withID(domain.Defaults("a"), 3), withID(domain.Defaults("b"), 7))
	p := NewProvider(repo, &fakeRemote{}, zap.New(core))

	c, err := p.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), c.ID)
	assert.Equal(t, 1, logs.FilterMessage("multiple active loan configurations, using lowest id").Len())
}

func TestActive_RepoError(t *testing.T) {
	boom := errors.New("db down")
	p := NewProvider(&loanconfigmock.Repo{ListActiveFn: func(context.Context) ([]domain.Configuration, error) {
		return nil, boom
	}}, &fakeRemote{}, nil)
	_, err := p.Active(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPublicConfig(t *testing.T) {
	p := NewProvider(loanconfigmock.Active(withID(domain.Defaults("main"), 1)), &fakeRemote{}, nil)
	pc, err := p.PublicConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", pc.Name)
	assert.Equal(t, 1_000_000.0, pc.Limits.Min)
	assert.Equal(t, 36.0, pc.MaxInterestRate)
	assert.Equal(t, 50_000.0, pc.Fees.ProcessingFee)
}

func TestTestConnection(t *testing.T) {
	cfg := withID(domain.Defaults("main"), 1)
	cfg.ServerAPIKey = "key"
	r := &fakeRemote{}
	p := NewProvider(loanconfigmock.Active(cfg), r, nil)
	require.NoError(t, p.TestConnection(context.Background()))
	assert.Equal(t, "key", r.gotEP.APIKey)

	noKey := withID(domain.Defaults("main"), 1)
	p = NewProvider(loanconfigmock.Active(noKey), r, nil)
	assert.ErrorIs(t, p.TestConnection(context.Background()), domain.ErrInvalidConfig)
}

func TestSyncConfig_StoresExternalID(t *testing.T) {
	cfg := withID(domain.Defaults("main"), 5)
	cfg.ServerAPIKey = "key"
	var saved *domain.Configuration
	repo := loanconfigmock.Active(cfg)
	repo.SaveFn = func(_ context.Context, c *domain.Configuration) error {
		saved = c
		return nil
	}
	r := &fakeRemote{syncID: "srv-9"}
	p := NewProvider(repo, r, nil)

	got, err := p.SyncConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "srv-9", got.ExternalID)
	require.NotNil(t, saved)

	body, ok := r.gotBody.(snapshot)
	require.True(t, ok)
	assert.Equal(t, "5", body.ExternalID)
	assert.Equal(t, 1.2, body.RiskFactor)
}

func TestSyncConfig_RemoteFailureSavesNothing(t *testing.T) {
	cfg := withID(domain.Defaults("main"), 5)
	cfg.ServerAPIKey = "key"
	repo := loanconfigmock.Active(cfg)
	repo.SaveFn = func(context.Context, *domain.Configuration) error {
		t.Fatalf("Save must not be called")
		return nil
	}
	boom := errors.New("unreachable")
	p := NewProvider(repo, &fakeRemote{syncErr: boom}, nil)
	_, err := p.SyncConfig(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSeed(t *testing.T) {
	var created *domain.Configuration
	repo := &loanconfigmock.Repo{CreateFn: func(_ context.Context, c *domain.Configuration) error {
		created = c
		return nil
	}}
	p := NewProvider(repo, &fakeRemote{}, nil)
	c, ok, err := p.Seed(context.Background(), "Default", "http://srv:3000", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, created, c)
	assert.True(t, c.Active)
	assert.Equal(t, "http://srv:3000", c.ServerAPIURL)

	existing := withID(domain.Defaults("x"), 1)
	p = NewProvider(loanconfigmock.Active(existing), &fakeRemote{}, nil)
	c, ok, err = p.Seed(context.Background(), "Default", "", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "x", c.Name)
}

func TestLoanTypes(t *testing.T) {
	p := NewProvider(&loanconfigmock.Repo{}, &fakeRemote{}, nil)
	_, err := p.CreateLoanType(context.Background(), CreateLoanTypeInput{Name: "SME", Code: "SME"})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	lt, err := p.CreateLoanType(context.Background(), CreateLoanTypeInput{Name: "SME", Code: "SME", TermMonths: 6, InterestRate: 14})
	require.NoError(t, err)
	assert.True(t, lt.Active)

	p = NewProvider(&loanconfigmock.Repo{GetLoanTypeFn: func(context.Context, uint64) (*domain.LoanType, error) {
		return nil, gorm.ErrRecordNotFound
	}}, &fakeRemote{}, nil)
	_, err = p.GetLoanType(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
