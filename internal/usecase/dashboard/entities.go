package dashboard

// Stats summarises mirrored loans created inside a window.
type Stats struct {
	From string `json:"from"`
	To   string `json:"to"`

	TotalLoans  int     `json:"total_loans"`
	TotalAmount float64 `json:"total_amount"`

	Active    int `json:"active"`
	Funded    int `json:"funded"`
	Defaulted int `json:"defaulted"`
	Completed int `json:"completed"`

	FundingRate         float64 `json:"funding_rate"`
	DefaultRate         float64 `json:"default_rate"`
	AverageAmount       float64 `json:"average_amount"`
	AverageInterestRate float64 `json:"average_interest_rate"`

	TotalBorrowers  int `json:"total_borrowers"`
	ActiveBorrowers int `json:"active_borrowers"`

	ByStatus     map[string]int `json:"by_status"`
	ByPurpose    []LabelCount   `json:"by_purpose"`
	MonthlyTrend []MonthPoint   `json:"monthly_trend"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type MonthPoint struct {
	Month  string  `json:"month"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// PublicLoan is one row of the website listing.
type PublicLoan struct {
	Name         string  `json:"name"`
	Borrower     string  `json:"borrower"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	Term         int     `json:"term"`
	StartDate    *string `json:"start_date"`
}
