package classify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipincome-dev/ipincome/internal/config"
	"github.com/ipincome-dev/ipincome/internal/model"
)

func testRules(t *testing.T) *config.Compiled {
	t.Helper()
	rules, err := config.DefaultRuleset().Compile()
	require.NoError(t, err)
	return rules
}

func credit(amount string) model.Transaction {
	return model.Transaction{
		ID:            "tx-1",
		OperationDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Credit:        dec(amount),
		ExchangeRate:  decimal.NewFromInt(1),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBusinessCredit(t *testing.T) {
	tx := credit("5000.00")
	tx.KNP = "710"
	tx.Purpose = "Оплата по договору 12"

	flags := Transaction(tx, testRules(t))
	assert.True(t, flags.BusinessIncome)
	assert.False(t, flags.NonBusiness)
	assert.Equal(t, "5000", flags.IPCreditAmount.String())
	assert.Empty(t, flags.ExclusionReason)
	assert.Equal(t, "2025-07", flags.RulesetVersion)
}

func TestExcludedKNP(t *testing.T) {
	tx := credit("5000.00")
	tx.KNP = "411" // loan disbursement, in the base exclusion set
	tx.Purpose = "Выдача займа"

	flags := Transaction(tx, testRules(t))
	assert.True(t, flags.NonBusinessByKNP)
	assert.False(t, flags.BusinessIncome)
	assert.True(t, flags.IPCreditAmount.IsZero())
	assert.Equal(t, ReasonKNPBase, flags.ExclusionReason)
}

func TestKNPNormalization(t *testing.T) {
	tx := credit("100.00")
	tx.KNP = " 0411 "

	flags := Transaction(tx, testRules(t))
	assert.Equal(t, "411", flags.KNPNormalized)
	assert.True(t, flags.NonBusinessByKNP)
}

func TestExtraKNP_OnlyAfterCutoff(t *testing.T) {
	rules := testRules(t)

	before := credit("100.00")
	before.KNP = "310"
	before.OperationDate = time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	assert.True(t, Transaction(before, rules).BusinessIncome)

	after := before
	after.OperationDate = time.Date(2025, 7, 22, 0, 0, 0, 0, time.UTC)
	got := Transaction(after, rules)
	assert.False(t, got.BusinessIncome)
	assert.Equal(t, ReasonKNPExtra, got.ExclusionReason)
}

func TestKeywordExclusion_CreditsOnly(t *testing.T) {
	rules := testRules(t)

	tx := credit("2000.00")
	tx.Purpose = "Зарплата за январь"
	got := Transaction(tx, rules)
	assert.True(t, got.NonBusinessByKeywords)
	assert.False(t, got.BusinessIncome)
	assert.Equal(t, "keyword:зарплата", got.ExclusionReason)

	// The same text on a debit row fires nothing.
	deb := model.Transaction{
		ID:            "tx-2",
		OperationDate: tx.OperationDate,
		Debit:         dec("2000.00"),
		Purpose:       "Зарплата за январь",
	}
	assert.False(t, Transaction(deb, rules).NonBusinessByKeywords)
}

func TestKeywordMatchesCounterparty(t *testing.T) {
	tx := credit("500.00")
	tx.Counterparty = "ТОО 1XBET KZ"

	got := Transaction(tx, testRules(t))
	assert.True(t, got.NonBusinessByKeywords)
}

func TestWhitelistedBankOverridesKeywords(t *testing.T) {
	tx := credit("500.00")
	tx.Purpose = "Возврат депозита"
	tx.Counterparty = "АО Банк ЦентрКредит"

	got := Transaction(tx, testRules(t))
	assert.False(t, got.NonBusinessByKeywords)
	assert.True(t, got.BusinessIncome)
}

func TestKNP099ReimbursementKeptAsIncome(t *testing.T) {
	tx := credit("1200.00")
	tx.KNP = "099"
	tx.Purpose = "Возврат: возмещение по гарантии"

	got := Transaction(tx, testRules(t))
	assert.True(t, got.BusinessIncome)
	assert.Empty(t, got.ExclusionReason)
}

func TestIdempotent(t *testing.T) {
	rules := testRules(t)
	tx := credit("5000.00")
	tx.KNP = "710"
	tx.Purpose = "Оплата по договору"

	first := Transaction(tx, rules)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Transaction(tx, rules))
	}
}

func TestAll_PreservesOrder(t *testing.T) {
	rules := testRules(t)
	txs := []model.Transaction{credit("10.00"), credit("20.00")}
	txs[1].ID = "tx-2"

	flags := All(txs, rules)
	require.Len(t, flags, 2)
	assert.Equal(t, "tx-1", flags[0].TransactionID)
	assert.Equal(t, "tx-2", flags[1].TransactionID)
}
