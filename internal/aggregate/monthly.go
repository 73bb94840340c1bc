// Package aggregate buckets business income by month and computes the
// statement-level income summary. All arithmetic is fixed-point decimal.
package aggregate

import (
	"sort"

	"github.com/ipincome-dev/ipincome/internal/id"
	"github.com/ipincome-dev/ipincome/internal/model"
)

// Monthly groups business-income amounts by the first day of their
// operation month. Months without business transactions produce no bucket.
// flags must be positionally 1:1 with txs, as classify.All returns them.
func Monthly(statementID string, txs []model.Transaction, flags []model.Flags) []model.MonthlyBucket {
	byMonth := make(map[string]*model.MonthlyBucket)
	for i, tx := range txs {
		if i >= len(flags) || !flags[i].BusinessIncome {
			continue
		}
		month := id.MonthStart(tx.OperationDate)
		key := id.MonthKey(month)
		b, ok := byMonth[key]
		if !ok {
			b = &model.MonthlyBucket{StatementID: statementID, Month: month}
			byMonth[key] = b
		}
		b.BusinessIncome = b.BusinessIncome.Add(flags[i].IPCreditAmount)
		b.TransactionCount++
	}

	buckets := make([]model.MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month.Before(buckets[j].Month)
	})
	return buckets
}
