package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ipincome-dev/ipincome/internal/config"
	"github.com/ipincome-dev/ipincome/internal/model"
)

// precision matches the normalizer's fixed-point scale.
const precision = 4

// Summarize computes the whole-statement income summary. Statistics cover
// positive business amounts only; with none, they stay nil and totals are
// zero, which is not an error.
func Summarize(statementID string, txs []model.Transaction, flags []model.Flags, rules *config.Compiled) (model.Summary, error) {
	s := model.Summary{
		StatementID:  statementID,
		FormulaID:    rules.FormulaID,
		FormulaNotes: rules.FormulaNotes,
	}

	var amounts []decimal.Decimal
	total := decimal.Zero
	for i := range txs {
		if i >= len(flags) {
			break
		}
		total = total.Add(flags[i].IPCreditAmount)
		if flags[i].BusinessIncome && flags[i].IPCreditAmount.IsPositive() {
			amounts = append(amounts, flags[i].IPCreditAmount)
		}
	}

	s.TotalIncome = total
	s.TransactionsUsed = len(amounts)
	s.TransactionsExcluded = len(txs) - len(amounts)

	if len(amounts) == 0 {
		s.TotalIncomeAdjusted = decimal.Zero
		return s, nil
	}

	sorted := make([]decimal.Decimal, len(amounts))
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	min := sorted[0]
	max := sorted[len(sorted)-1]
	mean := total.Div(decimal.NewFromInt(int64(len(sorted)))).Round(precision)
	median := medianOf(sorted)

	s.MinTransaction = &min
	s.MaxTransaction = &max
	s.MeanTransaction = &mean
	s.MedianTransaction = &median

	adjusted, err := applyFormula(rules.FormulaID, total, max, min)
	if err != nil {
		return model.Summary{}, err
	}
	s.TotalIncomeAdjusted = adjusted

	return s, nil
}

// medianOf uses the standard rank definition: the middle value, or the mean
// of the two central values for an even count.
func medianOf(sorted []decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	two := decimal.NewFromInt(2)
	return sorted[n/2-1].Add(sorted[n/2]).Div(two).Round(precision)
}

func applyFormula(formulaID string, total, max, min decimal.Decimal) (decimal.Decimal, error) {
	switch formulaID {
	case "adjusted_v2":
		six := decimal.NewFromInt(6)
		return total.Sub(max).Sub(min).Add(total.Div(six)).Round(precision), nil
	case "identity":
		return total, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown income formula %q", formulaID)
	}
}
