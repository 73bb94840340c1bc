package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBucket is the business income of one statement for one calendar
// month. Months with no business transactions are not materialized.
type MonthlyBucket struct {
	StatementID      string
	Month            time.Time // first day of the month, UTC
	BusinessIncome   decimal.Decimal
	TransactionCount int
}

// Summary holds whole-statement income totals and descriptive statistics.
// The statistics are computed over positive business amounts only and are
// nil when the statement has no business income rows.
type Summary struct {
	StatementID          string
	TotalIncome          decimal.Decimal
	TotalIncomeAdjusted  decimal.Decimal
	FormulaID            string
	FormulaNotes         string
	MaxTransaction       *decimal.Decimal
	MinTransaction       *decimal.Decimal
	MeanTransaction      *decimal.Decimal
	MedianTransaction    *decimal.Decimal
	TransactionsUsed     int
	TransactionsExcluded int
}

// ValidationReport reconciles declared balances against the transaction
// rollforward. A balance mismatch is a warning, never fatal.
type ValidationReport struct {
	StatementID     string
	RollforwardSum  decimal.Decimal // sum(credit) - sum(debit) over all rows
	BalanceMatches  bool
	ValidationScore float64 // 0..1 composite
	Flags           []string
	Processor       string
	RulesetVersion  string
}
