// Package classify tags normalized transactions as business income or
// non-business transfers using a compiled ruleset. Classification is a pure
// function of (transaction, ruleset): replaying the same inputs always
// yields the same flags.
package classify

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ipincome-dev/ipincome/internal/config"
	"github.com/ipincome-dev/ipincome/internal/model"
)

// Exclusion reason prefixes recorded in Flags.ExclusionReason.
const (
	ReasonKNPBase     = "knp_base"
	ReasonKNPExtra    = "knp_extra"
	reasonKeywordPfx  = "keyword:"
	reimbursementCode = "099"
)

// Transaction computes the classification flags for one transaction.
func Transaction(tx model.Transaction, rules *config.Compiled) model.Flags {
	flags := model.Flags{
		TransactionID:  tx.ID,
		KNPNormalized:  config.NormalizeKNP(tx.KNP),
		IPCreditAmount: decimal.Zero,
		RulesetVersion: rules.Version,
	}

	text := strings.ToLower(tx.Purpose + " " + tx.Counterparty)

	reason := ""
	if rules.BaseCodes[flags.KNPNormalized] {
		flags.NonBusinessByKNP = true
		reason = ReasonKNPBase
	} else if len(rules.ExtraCodes) > 0 && !rules.ExtraCutoff.IsZero() &&
		!tx.OperationDate.Before(rules.ExtraCutoff) && rules.ExtraCodes[flags.KNPNormalized] {
		flags.NonBusinessByKNP = true
		reason = ReasonKNPExtra
	}

	// Keyword rules apply to credits only, and never to whitelisted banks.
	if tx.IsCredit() && !matchesAny(text, rules.WhitelistBanks) {
		if kw := firstMatch(text, rules.Keywords); kw != "" {
			flags.NonBusinessByKeywords = true
			if reason == "" {
				reason = reasonKeywordPfx + kw
			}
		}
	}

	flags.NonBusiness = flags.NonBusinessByKNP || flags.NonBusinessByKeywords

	// Reimbursement override: KNP 099 credits matching a keep keyword stay
	// business income.
	if flags.NonBusiness && paddedKNP(tx.KNP) == reimbursementCode && matchesAny(text, rules.KeepKNP099) {
		flags.NonBusiness = false
		reason = ""
	}

	flags.BusinessIncome = tx.IsCredit() && !flags.NonBusiness
	if flags.BusinessIncome {
		flags.IPCreditAmount = tx.Credit
	}
	flags.ExclusionReason = reason

	return flags
}

// All classifies transactions in order, one Flags per transaction.
func All(txs []model.Transaction, rules *config.Compiled) []model.Flags {
	out := make([]model.Flags, len(txs))
	for i, tx := range txs {
		out[i] = Transaction(tx, rules)
	}
	return out
}

// paddedKNP keeps the code's digits zero-padded to three, the form the
// reimbursement rule is written against.
func paddedKNP(code string) string {
	var digits strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return ""
	}
	for len(d) < 3 {
		d = "0" + d
	}
	return d
}

func matchesAny(text string, needles []string) bool {
	return firstMatch(text, needles) != ""
}

func firstMatch(text string, needles []string) string {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return n
		}
	}
	return ""
}
