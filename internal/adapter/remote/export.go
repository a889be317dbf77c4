package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/mirror"
)

var _ mirror.Source = (*ExportSource)(nil)

// ExportSource reads loans from the lending server's export endpoint.
// It carries no wallets.
type ExportSource struct {
	client *Client
	ep     loanconfig.ServerEndpoint
}

func NewExportSource(c *Client, ep loanconfig.ServerEndpoint) *ExportSource {
	return &ExportSource{client: c, ep: ep}
}

func (s *ExportSource) Name() string { return "export" }

func (s *ExportSource) Wallets(context.Context) ([]mirror.Document, error) { return nil, nil }

func (s *ExportSource) Loans(ctx context.Context) ([]mirror.Document, error) {
	req, err := newJSONRequest(http.MethodGet, BaseURL(s.ep.URL)+"/loan/odoo/export/loans", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-auth", s.ep.APIKey)

	_, body, err := s.client.do(ctx, "export_loans", exportTimeout, req)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data struct {
			Loans []map[string]any `json:"loans"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: export_loans: decode response: %v", ErrRemote, err)
	}
	docs := make([]mirror.Document, 0, len(out.Data.Loans))
	for _, l := range out.Data.Loans {
		docs = append(docs, mirror.Document(l))
	}
	return docs, nil
}
