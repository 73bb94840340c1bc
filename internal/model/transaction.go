package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the unified representation of one statement operation.
// Created once by the normalizer from exactly one RawLine, never mutated.
// Exactly one of Debit/Credit is positive, except zero-amount info rows
// which keep both at zero with RawText intact.
type Transaction struct {
	ID                  string // uuid
	StatementID         string
	LineNumber          int
	OperationDate       time.Time
	ValueDate           *time.Time
	Debit               decimal.Decimal
	Credit              decimal.Decimal
	Currency            string
	ExchangeRate        decimal.Decimal // 1 for KZT rows
	AmountKZT           decimal.Decimal // home-currency equivalent of the non-zero side
	KNP                 string
	Purpose             string
	Counterparty        string
	CounterpartyID      string
	CounterpartyAccount string
	BankCode            string
	DocumentNo          string
	RawText             string
}

// IsCredit reports whether the transaction is an inflow.
func (t Transaction) IsCredit() bool {
	return t.Credit.IsPositive()
}

// Flags is the classification outcome for one transaction, 1:1 with it and
// a pure function of (transaction, ruleset).
type Flags struct {
	TransactionID         string
	KNPNormalized         string
	NonBusinessByKNP      bool
	NonBusinessByKeywords bool
	NonBusiness           bool
	BusinessIncome        bool
	IPCreditAmount        decimal.Decimal // Credit when business income, else zero
	ExclusionReason       string          // rule that fired, empty for business income
	RulesetVersion        string
}
