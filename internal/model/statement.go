package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bank identifies a supported statement layout.
type Bank string

const (
	BankKaspiGold       Bank = "kaspi_gold"
	BankKaspiPay        Bank = "kaspi_pay"
	BankHalykBusiness   Bank = "halyk_business"
	BankHalykIndividual Bank = "halyk_individual"
	BankForte           Bank = "forte_bank"

	// BankAuto asks the extractor to pick the layout by detection confidence.
	BankAuto Bank = ""
)

// HomeCurrency is the statement home currency; rows in it need no exchange rate.
const HomeCurrency = "KZT"

// Document is a raw statement as received from upstream: opaque bytes plus a
// declared bank, or BankAuto for detection.
type Document struct {
	Name  string
	Bank  Bank
	Bytes []byte
}

// Header holds the fields extracted from a statement's header section.
// Any field may be absent; RawText is always populated once the header
// section has been reached.
type Header struct {
	AccountHolder  string
	IINBIN         string
	AccountNumber  string
	Currency       string
	PeriodFrom     *time.Time
	PeriodTo       *time.Time
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
	CreditTurnover *decimal.Decimal
	DebitTurnover  *decimal.Decimal
	RawText        string
}

// Completeness returns the filled fraction of the header's structured fields.
func (h Header) Completeness() float64 {
	total := 8
	filled := 0
	if h.AccountHolder != "" {
		filled++
	}
	if h.IINBIN != "" {
		filled++
	}
	if h.AccountNumber != "" {
		filled++
	}
	if h.PeriodFrom != nil {
		filled++
	}
	if h.PeriodTo != nil {
		filled++
	}
	if h.OpeningBalance != nil {
		filled++
	}
	if h.ClosingBalance != nil {
		filled++
	}
	if h.Currency != "" {
		filled++
	}
	return float64(filled) / float64(total)
}

// Footer holds the totals printed at the end of a statement, when present.
type Footer struct {
	TotalCredit    *decimal.Decimal
	TotalDebit     *decimal.Decimal
	ClosingBalance *decimal.Decimal
	RawText        string
}

// RawLine is one operation row as the bank layout prints it, split into the
// superset of named columns the supported layouts use. A layout fills the
// columns it has; the normalizer decides how to interpret them. Text keeps
// the original row for audit.
type RawLine struct {
	Number              int // 1-based row position within the statement
	DocumentNo          string
	OperationDate       string
	ValueDate           string
	Debit               string
	Credit              string
	Amount              string // single signed column (Kaspi Gold style)
	Currency            string
	ExchangeRate        string
	Counterparty        string
	CounterpartyID      string
	CounterpartyAccount string
	BankCode            string
	KNP                 string
	Purpose             string
	Text                string
}
