// Package validate reconciles a statement's declared balances and turnovers
// against the normalized transaction rollforward. Mismatches are recorded as
// flags on the report, never as errors: a statement with a broken balance is
// still analyzable, just less trustworthy.
package validate

import (
	"github.com/shopspring/decimal"

	"github.com/ipincome-dev/ipincome/internal/config"
	"github.com/ipincome-dev/ipincome/internal/model"
)

// Flag values recorded on a ValidationReport.
const (
	FlagClosingMismatch = "closing_balance_mismatch"
	FlagCreditTurnover  = "credit_turnover_mismatch"
	FlagDebitTurnover   = "debit_turnover_mismatch"
	FlagFooterCredit    = "footer_credit_mismatch"
	FlagFooterDebit     = "footer_debit_mismatch"
	FlagBalancesMissing = "balance_fields_missing"
)

// Input gathers everything the validator needs about one statement.
type Input struct {
	StatementID  string
	Header       model.Header
	Footer       model.Footer
	Transactions []model.Transaction
	SkippedRows  int
	TotalRows    int // parsed + skipped
	Processor    string
}

// Report runs the balance rollforward and scores the statement.
//
// The rollforward sums signed home-currency equivalents, so foreign-currency
// rows reconcile through their exchange rate. For a pure KZT statement this
// is exactly sum(credit) - sum(debit).
func Report(in Input, rules *config.Compiled) model.ValidationReport {
	rep := model.ValidationReport{
		StatementID:    in.StatementID,
		Processor:      in.Processor,
		RulesetVersion: rules.Version,
	}

	credits := decimal.Zero
	debits := decimal.Zero
	for _, tx := range in.Transactions {
		if tx.IsCredit() {
			credits = credits.Add(tx.AmountKZT)
		} else {
			debits = debits.Add(tx.AmountKZT)
		}
	}
	rep.RollforwardSum = credits.Sub(debits)

	closing := in.Header.ClosingBalance
	if closing == nil {
		// Forte prints the closing balance only in the footer.
		closing = in.Footer.ClosingBalance
	}

	switch {
	case in.Header.OpeningBalance == nil || closing == nil:
		rep.BalanceMatches = false
		rep.Flags = append(rep.Flags, FlagBalancesMissing)
	default:
		expected := in.Header.OpeningBalance.Add(rep.RollforwardSum)
		if withinEpsilon(expected, *closing, rules.Epsilon) {
			rep.BalanceMatches = true
		} else {
			rep.Flags = append(rep.Flags, FlagClosingMismatch)
		}
	}

	// Turnover cross-checks are advisory. The header's declared turnovers and
	// the footer totals each get compared against the computed sums.
	if in.Header.CreditTurnover != nil && !withinEpsilon(*in.Header.CreditTurnover, credits, rules.Epsilon) {
		rep.Flags = append(rep.Flags, FlagCreditTurnover)
	}
	if in.Header.DebitTurnover != nil && !withinEpsilon(*in.Header.DebitTurnover, debits, rules.Epsilon) {
		rep.Flags = append(rep.Flags, FlagDebitTurnover)
	}
	if in.Footer.TotalCredit != nil && !withinEpsilon(*in.Footer.TotalCredit, credits, rules.Epsilon) {
		rep.Flags = append(rep.Flags, FlagFooterCredit)
	}
	if in.Footer.TotalDebit != nil && !withinEpsilon(*in.Footer.TotalDebit, debits, rules.Epsilon) {
		rep.Flags = append(rep.Flags, FlagFooterDebit)
	}

	rep.ValidationScore = score(in, rep.BalanceMatches, rules.Weights)
	return rep
}

// score is the weighted composite in [0, 1]: balance match, header
// completeness, and the fraction of rows that normalized.
func score(in Input, balanceMatches bool, w config.ScoreWeights) float64 {
	balance := 0.0
	if balanceMatches {
		balance = 1.0
	}
	rowsOK := 1.0
	if in.TotalRows > 0 {
		rowsOK = 1.0 - float64(in.SkippedRows)/float64(in.TotalRows)
	}
	s := w.Balance*balance + w.Completeness*in.Header.Completeness() + w.Rows*rowsOK
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func withinEpsilon(a, b, epsilon decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(epsilon)
}
