package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipincome-dev/ipincome/internal/config"
	"github.com/ipincome-dev/ipincome/internal/model"
)

const stmtID = "stmt-1"

func testRules(t *testing.T) *config.Compiled {
	t.Helper()
	rules, err := config.DefaultRuleset().Compile()
	require.NoError(t, err)
	return rules
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// businessTx builds a credit transaction plus matching business flags.
func businessTx(day time.Time, amount string) (model.Transaction, model.Flags) {
	tx := model.Transaction{
		ID:            "tx",
		StatementID:   stmtID,
		OperationDate: day,
		Credit:        dec(amount),
	}
	return tx, model.Flags{
		TransactionID:  tx.ID,
		BusinessIncome: true,
		IPCreditAmount: dec(amount),
	}
}

func excludedTx(day time.Time, amount string) (model.Transaction, model.Flags) {
	tx := model.Transaction{
		ID:            "tx",
		StatementID:   stmtID,
		OperationDate: day,
		Credit:        dec(amount),
	}
	return tx, model.Flags{TransactionID: tx.ID, NonBusiness: true}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthly_BucketsByMonthStart(t *testing.T) {
	tx1, f1 := businessTx(day(2025, 1, 5), "100.00")
	tx2, f2 := businessTx(day(2025, 1, 28), "200.00")
	tx3, f3 := businessTx(day(2025, 3, 2), "50.00")
	tx4, f4 := excludedTx(day(2025, 2, 10), "999.00")

	buckets := Monthly(stmtID,
		[]model.Transaction{tx1, tx2, tx3, tx4},
		[]model.Flags{f1, f2, f3, f4})

	require.Len(t, buckets, 2) // february is sparse: no bucket
	assert.Equal(t, day(2025, 1, 1), buckets[0].Month)
	assert.Equal(t, "300", buckets[0].BusinessIncome.String())
	assert.Equal(t, 2, buckets[0].TransactionCount)
	assert.Equal(t, day(2025, 3, 1), buckets[1].Month)
	assert.Equal(t, "50", buckets[1].BusinessIncome.String())
}

func TestSummary_TotalsMatchBuckets(t *testing.T) {
	var txs []model.Transaction
	var flags []model.Flags
	for _, amt := range []string{"100.00", "200.00", "300.00", "400.00"} {
		tx, f := businessTx(day(2025, 1, 10), amt)
		txs = append(txs, tx)
		flags = append(flags, f)
	}
	ex, exf := excludedTx(day(2025, 2, 1), "5000.00")
	txs = append(txs, ex)
	flags = append(flags, exf)

	buckets := Monthly(stmtID, txs, flags)
	summary, err := Summarize(stmtID, txs, flags, testRules(t))
	require.NoError(t, err)

	bucketTotal := decimal.Zero
	for _, b := range buckets {
		bucketTotal = bucketTotal.Add(b.BusinessIncome)
	}
	assert.True(t, summary.TotalIncome.Equal(bucketTotal),
		"summary total %s != bucket total %s", summary.TotalIncome, bucketTotal)
	assert.Equal(t, "1000", summary.TotalIncome.String())
	assert.Equal(t, 4, summary.TransactionsUsed)
	assert.Equal(t, 1, summary.TransactionsExcluded)
}

func TestSummary_Statistics(t *testing.T) {
	var txs []model.Transaction
	var flags []model.Flags
	for _, amt := range []string{"100.00", "200.00", "300.00", "400.00"} {
		tx, f := businessTx(day(2025, 1, 10), amt)
		txs = append(txs, tx)
		flags = append(flags, f)
	}

	summary, err := Summarize(stmtID, txs, flags, testRules(t))
	require.NoError(t, err)

	require.NotNil(t, summary.MedianTransaction)
	assert.Equal(t, "250", summary.MedianTransaction.String())
	assert.Equal(t, "100", summary.MinTransaction.String())
	assert.Equal(t, "400", summary.MaxTransaction.String())
	assert.Equal(t, "250", summary.MeanTransaction.String())

	// adjusted_v2: sum - max - min + sum/6
	want := dec("1000").Sub(dec("400")).Sub(dec("100")).Add(dec("1000").Div(dec("6"))).Round(4)
	assert.True(t, summary.TotalIncomeAdjusted.Equal(want),
		"adjusted %s != %s", summary.TotalIncomeAdjusted, want)
	assert.Equal(t, "adjusted_v2", summary.FormulaID)
	assert.Equal(t, "sum - max - min + sum/6", summary.FormulaNotes)
}

func TestSummary_OddCountMedian(t *testing.T) {
	var txs []model.Transaction
	var flags []model.Flags
	for _, amt := range []string{"10.00", "30.00", "20.00"} {
		tx, f := businessTx(day(2025, 1, 10), amt)
		txs = append(txs, tx)
		flags = append(flags, f)
	}
	summary, err := Summarize(stmtID, txs, flags, testRules(t))
	require.NoError(t, err)
	assert.Equal(t, "20", summary.MedianTransaction.String())
}

func TestSummary_NoBusinessIncome(t *testing.T) {
	ex, exf := excludedTx(day(2025, 1, 10), "5000.00")
	summary, err := Summarize(stmtID, []model.Transaction{ex}, []model.Flags{exf}, testRules(t))
	require.NoError(t, err)

	assert.True(t, summary.TotalIncome.IsZero())
	assert.True(t, summary.TotalIncomeAdjusted.IsZero())
	assert.Nil(t, summary.MaxTransaction)
	assert.Nil(t, summary.MinTransaction)
	assert.Nil(t, summary.MeanTransaction)
	assert.Nil(t, summary.MedianTransaction)
	assert.Equal(t, 0, summary.TransactionsUsed)
	assert.Equal(t, 1, summary.TransactionsExcluded)
}

func TestSummary_UnknownFormula(t *testing.T) {
	rules := testRules(t)
	broken := *rules
	broken.FormulaID = "nope"

	tx, f := businessTx(day(2025, 1, 10), "100.00")
	_, err := Summarize(stmtID, []model.Transaction{tx}, []model.Flags{f}, &broken)
	assert.Error(t, err)
}
