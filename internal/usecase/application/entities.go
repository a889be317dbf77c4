package application

import (
	"time"

	domain "p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/rate"
)

type CreateInput struct {
	BorrowerID      uint64
	LoanTypeID      uint64
	RequestedAmount float64
	Purpose         string
	ApplicationDate *time.Time
}

type ApproveInput struct {
	Actor  string
	Amount float64 // zero keeps the requested amount
}

type QuoteInput struct {
	Principal  float64
	TermMonths int
	Profile    rate.Profile
}

type Page struct {
	Items  []domain.LoanApplication `json:"items"`
	Total  int64                    `json:"total"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}
