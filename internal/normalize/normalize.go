// Package normalize maps raw operation lines into the unified transaction
// representation. The policy is skip-and-record: a row that cannot be
// normalized is reported as a RowError and excluded, never aborting the
// statement by itself.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ipincome-dev/ipincome/internal/amount"
	"github.com/ipincome-dev/ipincome/internal/id"
	"github.com/ipincome-dev/ipincome/internal/model"
)

// Precision is the fixed-point scale of all normalized amounts.
const Precision = 4

// Reason classifies why a row was skipped.
type Reason string

const (
	ReasonInvalidRow          Reason = "invalid_row"
	ReasonMissingExchangeRate Reason = "missing_exchange_rate"
)

// RowError records one skipped row.
type RowError struct {
	Line   int
	Reason Reason
	Detail string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Line, e.Reason, e.Detail)
}

// Options configure normalization for one statement.
type Options struct {
	StatementID string
}

// Rows normalizes all raw lines of a statement, returning the transactions
// that parsed and a RowError per skipped row.
func Rows(lines []model.RawLine, opts Options) ([]model.Transaction, []RowError) {
	var txs []model.Transaction
	var errs []RowError
	for _, line := range lines {
		tx, err := Row(line, opts)
		if err != nil {
			var re RowError
			if r, ok := err.(RowError); ok {
				re = r
			} else {
				re = RowError{Line: line.Number, Reason: ReasonInvalidRow, Detail: err.Error()}
			}
			errs = append(errs, re)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, errs
}

// Row normalizes one raw line. The returned transaction is complete and
// never mutated afterwards.
func Row(line model.RawLine, opts Options) (model.Transaction, error) {
	opDate, err := amount.ParseDate(line.OperationDate)
	if err != nil {
		return model.Transaction{}, RowError{
			Line: line.Number, Reason: ReasonInvalidRow,
			Detail: fmt.Sprintf("operation date %q", line.OperationDate),
		}
	}

	var valueDate *time.Time
	if strings.TrimSpace(line.ValueDate) != "" {
		if vd, err := amount.ParseDate(line.ValueDate); err == nil {
			valueDate = &vd
		}
	}

	debit, credit, err := splitAmounts(line)
	if err != nil {
		return model.Transaction{}, RowError{
			Line: line.Number, Reason: ReasonInvalidRow, Detail: err.Error(),
		}
	}
	if debit.IsPositive() && credit.IsPositive() {
		return model.Transaction{}, RowError{
			Line: line.Number, Reason: ReasonInvalidRow,
			Detail: "both debit and credit are positive",
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(line.Currency))
	if currency == "" {
		currency = model.HomeCurrency
	}

	rate, err := exchangeRate(line, currency)
	if err != nil {
		return model.Transaction{}, err
	}

	native := credit
	if debit.IsPositive() {
		native = debit
	}

	return model.Transaction{
		ID:                  id.NewTransactionID(),
		StatementID:         opts.StatementID,
		LineNumber:          line.Number,
		OperationDate:       opDate,
		ValueDate:           valueDate,
		Debit:               debit.Round(Precision),
		Credit:              credit.Round(Precision),
		Currency:            currency,
		ExchangeRate:        rate,
		AmountKZT:           native.Mul(rate).Round(Precision),
		KNP:                 strings.TrimSpace(line.KNP),
		Purpose:             strings.TrimSpace(line.Purpose),
		Counterparty:        strings.TrimSpace(line.Counterparty),
		CounterpartyID:      strings.TrimSpace(line.CounterpartyID),
		CounterpartyAccount: strings.TrimSpace(line.CounterpartyAccount),
		BankCode:            strings.TrimSpace(line.BankCode),
		DocumentNo:          strings.TrimSpace(line.DocumentNo),
		RawText:             line.Text,
	}, nil
}

// splitAmounts resolves the layout's amount columns: either a single signed
// column split by its sign, or separate debit/credit columns.
func splitAmounts(line model.RawLine) (debit, credit decimal.Decimal, err error) {
	if s := strings.TrimSpace(line.Amount); s != "" {
		signed, err := amount.Parse(s)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("signed amount %q: %w", s, err)
		}
		if signed.IsNegative() {
			return signed.Neg(), decimal.Zero, nil
		}
		return decimal.Zero, signed, nil
	}

	debit, err = amount.ParseOptional(line.Debit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("debit %q: %w", line.Debit, err)
	}
	credit, err = amount.ParseOptional(line.Credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("credit %q: %w", line.Credit, err)
	}
	if debit.IsNegative() || credit.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("negative amount in debit/credit columns")
	}
	return debit, credit, nil
}

// exchangeRate resolves the row's rate: 1 for home-currency rows, the
// layout's rate column otherwise.
func exchangeRate(line model.RawLine, currency string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(line.ExchangeRate)
	if currency == model.HomeCurrency {
		if raw == "" || raw == "-" {
			return decimal.NewFromInt(1), nil
		}
		rate, err := amount.Parse(raw)
		if err != nil || !rate.IsPositive() {
			return decimal.NewFromInt(1), nil
		}
		return rate, nil
	}

	if raw == "" || raw == "-" {
		return decimal.Zero, RowError{
			Line: line.Number, Reason: ReasonMissingExchangeRate,
			Detail: fmt.Sprintf("currency %s has no exchange rate", currency),
		}
	}
	rate, err := amount.Parse(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, RowError{
			Line: line.Number, Reason: ReasonMissingExchangeRate,
			Detail: fmt.Sprintf("currency %s has unreadable exchange rate %q", currency, raw),
		}
	}
	return rate, nil
}
