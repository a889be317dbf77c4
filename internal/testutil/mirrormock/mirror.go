package mirrormock

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"p2p-backoffice/internal/domain/mirror"
)

var (
	_ mirror.Store           = (*Store)(nil)
	_ mirror.PartyRepository = (*Parties)(nil)
	_ mirror.Source          = (*Source)(nil)
)

// ErrNotFound matches what the gorm repositories return.
var ErrNotFound = gorm.ErrRecordNotFound

// Store keeps rows in memory keyed by table and key value.
type Store struct {
	mu   sync.Mutex
	Rows map[string]map[any]map[string]any

	// InsertErr, when set, fails every Insert.
	InsertErr error
}

func NewStore() *Store { return &Store{Rows: map[string]map[any]map[string]any{}} }

func (s *Store) Exists(_ context.Context, table, _ string, key any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Rows[table][key]
	return ok, nil
}

func (s *Store) Insert(_ context.Context, table string, row map[string]any) error {
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Rows[table] == nil {
		s.Rows[table] = map[any]map[string]any{}
	}
	s.Rows[table][rowKey(table, row)] = copyRow(row)
	return nil
}

func (s *Store) Update(_ context.Context, table, _ string, key any, row map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.Rows[table][key]
	if !ok {
		return ErrNotFound
	}
	for k, v := range row {
		cur[k] = v
	}
	return nil
}

// Row returns a stored row or nil.
func (s *Store) Row(table string, key any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Rows[table][key]
}

func (s *Store) Count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Rows[table])
}

// keys per table, mirrors the schemas' key columns
var keyColumns = map[string]string{
	"mirror_wallets":    "user_id",
	"mirror_loans":      "contract_id",
	"loan_applications": "server_loan_id",
	"disbursements":     "server_loan_id",
}

func rowKey(table string, row map[string]any) any {
	if col, ok := keyColumns[table]; ok {
		return row[col]
	}
	return row["id"]
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// Parties is an in-memory mirror.PartyRepository.
type Parties struct {
	mu   sync.Mutex
	list []mirror.Party
}

func (p *Parties) FindByRef(_ context.Context, ref string) (*mirror.Party, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.list {
		if p.list[i].Ref == ref {
			c := p.list[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (p *Parties) FindByPhone(_ context.Context, phone string) (*mirror.Party, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.list {
		if p.list[i].Phone == phone {
			c := p.list[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (p *Parties) Create(_ context.Context, party *mirror.Party) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	party.ID = uint64(len(p.list) + 1)
	party.CreatedAt = time.Now().UTC()
	p.list = append(p.list, *party)
	return nil
}

func (p *Parties) Get(_ context.Context, id uint64) (*mirror.Party, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id == 0 || int(id) > len(p.list) {
		return nil, ErrNotFound
	}
	c := p.list[id-1]
	return &c, nil
}

func (p *Parties) All() []mirror.Party {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mirror.Party(nil), p.list...)
}

// Source serves fixed documents.
type Source struct {
	SourceName string
	WalletDocs []mirror.Document
	LoanDocs   []mirror.Document
	Err        error
}

func (s *Source) Name() string {
	if s.SourceName == "" {
		return "mock"
	}
	return s.SourceName
}

func (s *Source) Wallets(context.Context) ([]mirror.Document, error) { return s.WalletDocs, s.Err }

func (s *Source) Loans(context.Context) ([]mirror.Document, error) { return s.LoanDocs, s.Err }
