package validate

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

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decP(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func kztCredit(amount string) model.Transaction {
	return model.Transaction{
		Credit:       dec(amount),
		Currency:     model.HomeCurrency,
		ExchangeRate: decimal.NewFromInt(1),
		AmountKZT:    dec(amount),
	}
}

func kztDebit(amount string) model.Transaction {
	return model.Transaction{
		Debit:        dec(amount),
		Currency:     model.HomeCurrency,
		ExchangeRate: decimal.NewFromInt(1),
		AmountKZT:    dec(amount),
	}
}

func fullHeader() model.Header {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	return model.Header{
		AccountHolder:  "ИП Иванов",
		IINBIN:         "850101300123",
		AccountNumber:  "KZ12345",
		Currency:       "KZT",
		PeriodFrom:     &from,
		PeriodTo:       &to,
		OpeningBalance: decP("1000.00"),
		ClosingBalance: decP("1300.00"),
	}
}

func TestReport_BalanceMatches(t *testing.T) {
	in := Input{
		StatementID:  "stmt-1",
		Header:       fullHeader(),
		Transactions: []model.Transaction{kztCredit("500.00"), kztDebit("200.00")},
		TotalRows:    2,
		Processor:    "kaspi_pay",
	}

	rep := Report(in, testRules(t))
	assert.True(t, rep.BalanceMatches)
	assert.Equal(t, "300", rep.RollforwardSum.String())
	assert.Empty(t, rep.Flags)
	assert.InDelta(t, 1.0, rep.ValidationScore, 1e-9)
	assert.Equal(t, "kaspi_pay", rep.Processor)
	assert.Equal(t, "2025-07", rep.RulesetVersion)
}

func TestReport_WithinEpsilon(t *testing.T) {
	h := fullHeader()
	h.ClosingBalance = decP("1300.01") // off by exactly the default epsilon

	rep := Report(Input{
		Header:       h,
		Transactions: []model.Transaction{kztCredit("500.00"), kztDebit("200.00")},
		TotalRows:    2,
	}, testRules(t))
	assert.True(t, rep.BalanceMatches)
}

func TestReport_ClosingMismatch(t *testing.T) {
	h := fullHeader()
	h.ClosingBalance = decP("9999.00")

	rep := Report(Input{
		Header:       h,
		Transactions: []model.Transaction{kztCredit("500.00"), kztDebit("200.00")},
		TotalRows:    2,
	}, testRules(t))
	assert.False(t, rep.BalanceMatches)
	assert.Contains(t, rep.Flags, FlagClosingMismatch)
	// Completeness and row components still contribute.
	assert.InDelta(t, 0.5, rep.ValidationScore, 1e-9)
}

func TestReport_ClosingFromFooter(t *testing.T) {
	h := fullHeader()
	h.ClosingBalance = nil

	rep := Report(Input{
		Header:       h,
		Footer:       model.Footer{ClosingBalance: decP("1300.00")},
		Transactions: []model.Transaction{kztCredit("500.00"), kztDebit("200.00")},
		TotalRows:    2,
	}, testRules(t))
	assert.True(t, rep.BalanceMatches)
}

func TestReport_BalancesMissing(t *testing.T) {
	rep := Report(Input{
		Header:       model.Header{},
		Transactions: []model.Transaction{kztCredit("500.00")},
		TotalRows:    1,
	}, testRules(t))
	assert.False(t, rep.BalanceMatches)
	assert.Contains(t, rep.Flags, FlagBalancesMissing)
}

func TestReport_ForeignCurrencyRollforward(t *testing.T) {
	h := fullHeader()
	h.ClosingBalance = decP("1225.00")

	usd := model.Transaction{
		Credit:       dec("0.50"),
		Currency:     "USD",
		ExchangeRate: dec("450"),
		AmountKZT:    dec("225.00"),
	}
	rep := Report(Input{
		Header:       h,
		Transactions: []model.Transaction{usd},
		TotalRows:    1,
	}, testRules(t))
	assert.True(t, rep.BalanceMatches)
	assert.Equal(t, "225", rep.RollforwardSum.String())
}

func TestReport_TurnoverMismatches(t *testing.T) {
	h := fullHeader()
	h.CreditTurnover = decP("777.00")
	h.DebitTurnover = decP("200.00")

	rep := Report(Input{
		Header: h,
		Footer: model.Footer{
			TotalCredit: decP("500.00"),
			TotalDebit:  decP("888.00"),
		},
		Transactions: []model.Transaction{kztCredit("500.00"), kztDebit("200.00")},
		TotalRows:    2,
	}, testRules(t))

	assert.True(t, rep.BalanceMatches)
	assert.Contains(t, rep.Flags, FlagCreditTurnover)
	assert.NotContains(t, rep.Flags, FlagDebitTurnover)
	assert.NotContains(t, rep.Flags, FlagFooterCredit)
	assert.Contains(t, rep.Flags, FlagFooterDebit)
}

func TestReport_SkippedRowsLowerScore(t *testing.T) {
	in := Input{
		Header:       fullHeader(),
		Transactions: []model.Transaction{kztCredit("500.00"), kztDebit("200.00")},
		SkippedRows:  2,
		TotalRows:    4,
	}
	rep := Report(in, testRules(t))
	// 0.5*1 + 0.3*1 + 0.2*0.5
	assert.InDelta(t, 0.9, rep.ValidationScore, 1e-9)
}
