package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"p2p-backoffice/internal/domain/application"
	"p2p-backoffice/internal/domain/disbursement"
	"p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/domain/status"
	"p2p-backoffice/pkg/id"
)

var ErrNoApplication = errors.New("no imported application for loan")

// BridgeStatus normalizes raw lifecycle values and logs the ones it had to
// default.
func BridgeStatus(log *zap.Logger) Transform {
	return func(v any) (any, error) {
		s, _ := AsString(v)
		raw := s.(string)
		st, ok := status.Lookup(raw)
		if !ok && raw != "" {
			log.Warn("unmapped source status, using waiting", zap.String("raw", raw))
		}
		return st, nil
	}
}

func WalletSchema() Schema {
	return Schema{
		Name:  "wallets",
		Table: mirror.Wallet{}.TableName(),
		Key:   Field{Target: "user_id", Sources: []string{"user_id", "_id"}, Transform: AsString},
		Fields: []Field{
			{Target: "balance", Sources: []string{"balance"}, Transform: AsFloat},
			{Target: "currency", Sources: []string{"currency"}, Transform: DefaultString("USDT")},
			{Target: "last_updated", Sources: []string{"updated_at", "updatedAt"}, Transform: AsTime},
		},
		SyncColumn: "last_sync",
	}
}

// LoanSchema accepts both document-store contracts and export rows.
func LoanSchema(log *zap.Logger) Schema {
	return Schema{
		Name:  "loans",
		Table: mirror.ExternalLoan{}.TableName(),
		Key:   Field{Target: "contract_id", Sources: []string{"contractId", "_id", "id"}, Transform: AsString},
		Fields: []Field{
			{Target: "borrower_id", Sources: []string{"borrower_id", "borrowerId", "borrower.id"}, Transform: AsString},
			{Target: "borrower_name", Sources: []string{"borrower_name", "borrowerName", "borrower.name"}, Transform: AsString},
			{Target: "borrower_phone", Sources: []string{"borrower_phone", "borrowerPhone", "borrower.phone"}, Transform: AsString},
			{Target: "capital", Sources: []string{"info.capital", "capital", "amount"}, Transform: AsFloat},
			{Target: "interest_rate", Sources: []string{"info.rate", "interest_rate", "interestRate"}, Transform: AsFloat},
			{Target: "term_months", Sources: []string{"info.periodMonth", "term_months", "termMonths"}, Transform: DefaultInt(12)},
			{Target: "status", Sources: []string{"status"}, Transform: BridgeStatus(log)},
			{Target: "willing", Sources: []string{"info.willing", "willing", "purpose"}, Transform: AsString},
			{Target: "description", Sources: []string{"info.description", "description"}, Transform: AsString},
			{Target: "maturity_date", Sources: []string{"info.maturityDate", "maturity_date"}, Transform: AsTime},
			{Target: "created_date", Sources: []string{"info.createdDate", "created_date"}, Transform: AsTime},
			{Target: "monthly_principal_pay", Sources: []string{"info.monthlyPrincipalPay", "monthly_principal_pay"}, Transform: AsFloat},
			{Target: "monthly_interest_pay", Sources: []string{"info.monthlyInterestPay", "monthly_interest_pay"}, Transform: AsFloat},
			{Target: "monthly_pay", Sources: []string{"info.monthlyPay", "monthly_pay"}, Transform: AsFloat},
			{Target: "entirely_pay", Sources: []string{"info.entirelyPay", "entirely_pay"}, Transform: AsFloat},
			{Target: "total_notes", Sources: []string{"totalNotes", "total_notes"}, Transform: AsInt},
			{Target: "invested_notes", Sources: []string{"investedNotes", "invested_notes"}, Transform: AsInt},
			{Target: "created_at_source", Sources: []string{"createdAt", "created_at", "created_date"}, Transform: AsTime},
		},
		SyncColumn: "last_sync",
	}
}

func dateOr(v any, now time.Time) time.Time {
	if t, ok := v.(*time.Time); ok && t != nil {
		return *t
	}
	return now.Truncate(24 * time.Hour)
}

func importRef(doc mirror.Document) mirror.PartyRef {
	str := func(path string) string {
		v, _ := doc.Lookup(path)
		s, _ := AsString(v)
		return s.(string)
	}
	return mirror.PartyRef{ID: str("borrower.id"), Name: str("borrower.name"), Phone: str("borrower.phone")}
}

// ApplicationImportSchema turns mirrored loans into loan applications.
func ApplicationImportSchema(parties mirror.PartyRepository, types loanconfig.Repository) Schema {
	return Schema{
		Name:  "applications",
		Table: application.LoanApplication{}.TableName(),
		Key:   Field{Target: "server_loan_id", Sources: []string{"contract_id"}, Transform: AsString},
		Fields: []Field{
			{Target: "requested_amount", Sources: []string{"capital"}, Transform: AsFloat},
			{Target: "approved_amount", Sources: []string{"capital"}, Transform: AsFloat},
			{Target: "interest_rate", Sources: []string{"interest_rate"}, Transform: AsFloat},
			{Target: "term_months", Sources: []string{"term_months"}, Transform: DefaultInt(12)},
			{Target: "purpose", Sources: []string{"willing"}, Transform: AsString},
			{Target: "status", Sources: []string{"status"}, Transform: func(v any) (any, error) {
				s, _ := AsString(v)
				return application.FromBridge.FromRaw(s.(string)), nil
			}},
			{Target: "application_date", Sources: []string{"created_date"}, Transform: AsTime},
		},
		Enrich: func(ctx context.Context, doc mirror.Document, row map[string]any, now time.Time) error {
			party, err := ResolveParty(ctx, parties, importRef(doc))
			if err != nil {
				return err
			}
			lt, err := types.FirstLoanType(ctx)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				lt = loanconfig.DefaultLoanType()
				err = types.CreateLoanType(ctx, lt)
			}
			if err != nil {
				return fmt.Errorf("loan type: %w", err)
			}

			a := application.LoanApplication{
				RequestedAmount: row["requested_amount"].(float64),
				ApprovedAmount:  row["approved_amount"].(float64),
				InterestRate:    row["interest_rate"].(float64),
				TermMonths:      row["term_months"].(int),
				ApplicationDate: dateOr(row["application_date"], now),
			}
			if err := a.Validate(); err != nil {
				return err
			}
			if err := a.Recompute(); err != nil {
				return err
			}

			row["borrower_id"] = party.ID
			row["loan_type_id"] = lt.ID
			row["application_date"] = a.ApplicationDate
			row["due_date"] = a.DueDate
			row["monthly_payment"] = a.MonthlyPayment
			row["total_interest"] = a.TotalInterest
			row["total_payable"] = a.TotalPayable
			row["updated_at"] = now
			return nil
		},
		OnCreate: func(row map[string]any, now time.Time) {
			row["application_id"] = id.NewID32()
			row["created_at"] = now
		},
		SyncColumn: "last_sync",
	}
}

// DisbursementImportSchema records one confirmed disbursement per clean loan.
// Existing disbursements are never rewritten.
func DisbursementImportSchema(apps application.Repository) Schema {
	return Schema{
		Name:  "disbursements",
		Table: disbursement.Disbursement{}.TableName(),
		Key:   Field{Target: "server_loan_id", Sources: []string{"contract_id"}, Transform: AsString},
		Filter: func(doc mirror.Document) bool {
			v, _ := doc.Lookup("status")
			s, _ := AsString(v)
			return status.Normalize(s.(string)) == status.Clean
		},
		Fields: []Field{
			{Target: "amount", Sources: []string{"capital"}, Transform: AsFloat},
			{Target: "interest_rate", Sources: []string{"interest_rate"}, Transform: AsFloat},
			{Target: "status", Sources: []string{"status"}, Transform: func(v any) (any, error) {
				s, _ := AsString(v)
				return disbursement.FromBridge.FromRaw(s.(string)), nil
			}},
			{Target: "disbursement_date", Sources: []string{"created_date"}, Transform: AsTime},
			{Target: "method", Transform: Const(disbursement.MethodBankTransfer)},
			{Target: "blockchain_status", Transform: Const(disbursement.ChainConfirmed)},
		},
		Enrich: func(ctx context.Context, _ mirror.Document, row map[string]any, now time.Time) error {
			key := row["server_loan_id"].(string)
			app, err := apps.GetByServerLoanID(ctx, key)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoApplication
			}
			if err != nil {
				return err
			}

			d := disbursement.Disbursement{
				Amount:       row["amount"].(float64),
				InterestRate: row["interest_rate"].(float64),
			}
			if err := d.ValidateAmount(app.ApprovedAmount); err != nil {
				return err
			}
			d.ComputeTotals()

			row["application_id"] = app.ID
			row["borrower_id"] = app.BorrowerID
			row["interest_amount"] = d.InterestAmount
			row["total_amount"] = d.TotalAmount
			row["disbursement_date"] = dateOr(row["disbursement_date"], now)
			row["processed_at"] = now
			row["updated_at"] = now
			return nil
		},
		OnCreate: func(row map[string]any, now time.Time) {
			row["disbursement_id"] = id.NewID32()
			row["created_at"] = now
		},
		InsertOnly: true,
		SyncColumn: "last_sync",
	}
}
