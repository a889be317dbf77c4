package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/infrastructure/logger"
	"p2p-backoffice/internal/infrastructure/metrics"
)

// ErrRemote wraps every failed exchange with the lending server.
var ErrRemote = errors.New("lending server request failed")

const (
	disburseTimeout = 30 * time.Second
	healthTimeout   = 10 * time.Second
	syncTimeout     = 30 * time.Second
	exportTimeout   = 5 * time.Second
)

type Client struct {
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient uses per-call deadlines; the underlying client has none.
func NewClient(log *zap.Logger) *Client {
	return &Client{httpClient: &http.Client{}, log: logger.OrNop(log)}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// BaseURL tolerates a bare host:port and a trailing slash.
func BaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	return u
}

func (c *Client) do(ctx context.Context, endpoint string, timeout time.Duration, req *http.Request) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		metrics.RemoteRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		c.log.Error("remote call failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrRemote, endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	metrics.RemoteRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return resp, nil, fmt.Errorf("%w: %s: read body: %v", ErrRemote, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("remote call rejected", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
		return resp, body, fmt.Errorf("%w: %s: status %d", ErrRemote, endpoint, resp.StatusCode)
	}
	return resp, body, nil
}

func newJSONRequest(method, url string, payload any) (*http.Request, error) {
	var rdr io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

type DisburseRequest struct {
	DisbursementID    string  `json:"disbursement_id"`
	LoanApplicationID string  `json:"loan_application_id"`
	BorrowerID        uint64  `json:"borrower_id"`
	Amount            float64 `json:"amount"`
	DisbursementDate  string  `json:"disbursement_date"`
	Method            string  `json:"disbursement_method"`
	BankAccount       string  `json:"bank_account,omitempty"`
	BankName          string  `json:"bank_name,omitempty"`
	Notes             string  `json:"notes,omitempty"`
}

type DisburseResult struct {
	LoanID         string `json:"loan_id"`
	InvestmentID   string `json:"investment_id"`
	BlockchainTxID string `json:"blockchain_tx_id"`
}

type disburseResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    DisburseResult `json:"data"`
}

// Disburse asks the lending server to move the money.
func (c *Client) Disburse(ctx context.Context, ep loanconfig.ServerEndpoint, in DisburseRequest) (DisburseResult, error) {
	req, err := newJSONRequest(http.MethodPost, BaseURL(ep.URL)+"/loan/disburse", in)
	if err != nil {
		return DisburseResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+ep.APIKey)

	_, body, err := c.do(ctx, "disburse", disburseTimeout, req)
	if err != nil {
		return DisburseResult{}, err
	}
	var out disburseResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return DisburseResult{}, fmt.Errorf("%w: disburse: decode response: %v", ErrRemote, err)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "server reported failure"
		}
		return DisburseResult{}, fmt.Errorf("%w: disburse: %s", ErrRemote, msg)
	}
	return out.Data, nil
}

// Health succeeds only on a 2xx from the health endpoint.
func (c *Client) Health(ctx context.Context, ep loanconfig.ServerEndpoint) error {
	req, err := newJSONRequest(http.MethodGet, BaseURL(ep.URL)+"/api/config/health", nil)
	if err != nil {
		return err
	}
	_, _, err = c.do(ctx, "health", healthTimeout, req)
	return err
}

// SyncConfig pushes a configuration snapshot and returns the server-side id, if any.
func (c *Client) SyncConfig(ctx context.Context, ep loanconfig.ServerEndpoint, snapshot any) (string, error) {
	req, err := newJSONRequest(http.MethodPost, BaseURL(ep.URL)+"/api/config/sync", snapshot)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+ep.APIKey)

	_, body, err := c.do(ctx, "config_sync", syncTimeout, req)
	if err != nil {
		return "", err
	}
	var out struct {
		ID   any `json:"id"`
		Data struct {
			ID any `json:"id"`
		} `json:"data"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", nil
	}
	id := out.ID
	if id == nil {
		id = out.Data.ID
	}
	switch v := id.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", nil
}

// Transfer submits d for disbursement and maps the reply onto a receipt.
func (c *Client) Transfer(ctx context.Context, ep loanconfig.ServerEndpoint, d *disbursement.Disbursement, applicationID string) (disbursement.Receipt, error) {
	res, err := c.Disburse(ctx, ep, DisburseRequest{
		DisbursementID:    d.DisbursementID,
		LoanApplicationID: applicationID,
		BorrowerID:        d.BorrowerID,
		Amount:            d.Amount,
		DisbursementDate:  d.DisbursementDate.Format("2006-01-02"),
		Method:            string(d.Method),
		BankAccount:       d.BankAccount,
		BankName:          d.BankName,
		Notes:             d.Notes,
	})
	if err != nil {
		return disbursement.Receipt{}, err
	}
	return disbursement.Receipt{LoanID: res.LoanID, InvestmentID: res.InvestmentID, BlockchainTxID: res.BlockchainTxID}, nil
}
