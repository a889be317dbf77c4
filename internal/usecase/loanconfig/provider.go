package loanconfig

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/infrastructure/logger"
)

// Remote is the lending server as seen by configuration management.
type Remote interface {
	Health(ctx context.Context, ep domain.ServerEndpoint) error
	SyncConfig(ctx context.Context, ep domain.ServerEndpoint, snapshot any) (string, error)
}

type Provider struct {
	repo   domain.Repository
	remote Remote
	log    *zap.Logger
}

func NewProvider(repo domain.Repository, remote Remote, log *zap.Logger) *Provider {
	return &Provider{repo: repo, remote: remote, log: logger.OrNop(log)}
}

// Active returns the lowest-id active configuration.
func (p *Provider) Active(ctx context.Context) (*domain.Configuration, error) {
	cfgs, err := p.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(cfgs) == 0 {
		return nil, domain.ErrNoActiveConfig
	}
	if len(cfgs) > 1 {
		ids := make([]uint64, 0, len(cfgs))
		for _, c := range cfgs {
			ids = append(ids, c.ID)
		}
		p.log.Warn("multiple active loan configurations, using lowest id",
			zap.Uint64("selected", cfgs[0].ID), zap.Uint64s("active", ids))
	}
	c := cfgs[0]
	return &c, nil
}

func (p *Provider) PublicConfig(ctx context.Context) (*PublicConfig, error) {
	c, err := p.Active(ctx)
	if err != nil {
		return nil, err
	}
	return &PublicConfig{
		Name:             c.Name,
		Limits:           c.Limits(),
		BaseInterestRate: c.BaseInterestRate,
		MaxInterestRate:  c.MaxInterestRate,
		Fees:             c.Fees(),
	}, nil
}

func endpointOf(c *domain.Configuration) (domain.ServerEndpoint, error) {
	ep := c.Server()
	if ep.URL == "" || ep.APIKey == "" {
		return ep, fmt.Errorf("%w: server api url and key are required", domain.ErrInvalidConfig)
	}
	return ep, nil
}

// TestConnection probes the lending server's health endpoint.
func (p *Provider) TestConnection(ctx context.Context) error {
	c, err := p.Active(ctx)
	if err != nil {
		return err
	}
	ep, err := endpointOf(c)
	if err != nil {
		return err
	}
	return p.remote.Health(ctx, ep)
}

// SyncConfig pushes the active configuration and records the id the server returns.
func (p *Provider) SyncConfig(ctx context.Context) (*domain.Configuration, error) {
	c, err := p.Active(ctx)
	if err != nil {
		return nil, err
	}
	ep, err := endpointOf(c)
	if err != nil {
		return nil, err
	}
	extID, err := p.remote.SyncConfig(ctx, ep, snapshotOf(c))
	if err != nil {
		return nil, err
	}
	if extID != "" && extID != c.ExternalID {
		c.ExternalID = extID
		if err := p.repo.Save(ctx, c); err != nil {
			return nil, err
		}
	}
	p.log.Info("loan configuration synced", zap.Uint64("id", c.ID), zap.String("external_id", c.ExternalID))
	return c, nil
}

func snapshotOf(c *domain.Configuration) snapshot {
	return snapshot{
		ExternalID:             strconv.FormatUint(c.ID, 10),
		Name:                   c.Name,
		MinLoanAmount:          c.MinLoanAmount,
		MaxLoanAmount:          c.MaxLoanAmount,
		BaseInterestRate:       c.BaseInterestRate,
		MaxInterestRate:        c.MaxInterestRate,
		ServiceFeeRate:         c.ServiceFeeRate,
		LateFeeRate:            c.LateFeeRate,
		ProcessingFee:          c.ProcessingFee,
		AutoApprovalLimit:      c.AutoApprovalLimit,
		MaxConcurrentLoans:     c.MaxConcurrentLoans,
		RiskFactor:             c.RiskFactor,
		CreditScoreFactor:      c.CreditScoreFactor,
		LoanTermFactor:         c.LoanTermFactor,
		CollateralFactor:       c.CollateralFactor,
		EarlyRepaymentDiscount: c.EarlyRepaymentDiscount,
		LatePaymentPenalty:     c.LatePaymentPenalty,
		FactorConstant:         c.FactorConstant,
	}
}

// Seed creates the default active configuration when none exists.
// created reports whether a row was written.
func (p *Provider) Seed(ctx context.Context, name, serverURL, apiKey string) (cfg *domain.Configuration, created bool, err error) {
	cur, err := p.Active(ctx)
	switch {
	case err == nil:
		return cur, false, nil
	case !errors.Is(err, domain.ErrNoActiveConfig):
		return nil, false, err
	}
	c := domain.Defaults(name)
	if serverURL != "" {
		c.ServerAPIURL = serverURL
	}
	c.ServerAPIKey = apiKey
	if err := c.Validate(); err != nil {
		return nil, false, err
	}
	if err := p.repo.Create(ctx, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (p *Provider) CreateLoanType(ctx context.Context, in CreateLoanTypeInput) (*domain.LoanType, error) {
	t := &domain.LoanType{
		Name:           in.Name,
		Code:           in.Code,
		Description:    in.Description,
		InterestRate:   in.InterestRate,
		TermMonths:     in.TermMonths,
		MinAmount:      in.MinAmount,
		MaxAmount:      in.MaxAmount,
		ServiceFeeRate: in.ServiceFeeRate,
		LateFeeRate:    in.LateFeeRate,
		Active:         true,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := p.repo.CreateLoanType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Provider) ListLoanTypes(ctx context.Context) ([]domain.LoanType, error) {
	return p.repo.ListLoanTypes(ctx)
}

func (p *Provider) GetLoanType(ctx context.Context, id uint64) (*domain.LoanType, error) {
	t, err := p.repo.GetLoanType(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return t, err
}
