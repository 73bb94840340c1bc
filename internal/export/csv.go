// Package export renders processed statement results to CSV files:
// transactions with their classification flags, monthly buckets, and
// per-statement summaries with validation outcomes.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ipincome-dev/ipincome/internal/amount"
	"github.com/ipincome-dev/ipincome/internal/id"
	"github.com/ipincome-dev/ipincome/internal/model"
	"github.com/ipincome-dev/ipincome/internal/pipeline"
)

// Output file names written by WriteAll.
const (
	TransactionsFile = "transactions.csv"
	MonthlyFile      = "monthly.csv"
	SummaryFile      = "summary.csv"
)

// TransactionsHeader is the CSV header of transactions.csv.
const TransactionsHeader = "statement_id,line,operation_date,debit,credit,currency,exchange_rate,amount_kzt,knp,knp_normalized,purpose,counterparty,business_income,exclusion_reason"

const (
	txNumFields        = 14
	colStatementID     = 0
	colLine            = 1
	colOperationDate   = 2
	colDebit           = 3
	colCredit          = 4
	colCurrency        = 5
	colExchangeRate    = 6
	colAmountKZT       = 7
	colKNP             = 8
	colKNPNormalized   = 9
	colPurpose         = 10
	colCounterparty    = 11
	colBusinessIncome  = 12
	colExclusionReason = 13
)

// MarshalTransaction converts a transaction and its flags to a CSV row.
func MarshalTransaction(tx model.Transaction, flags model.Flags) []string {
	row := make([]string, txNumFields)
	row[colStatementID] = tx.StatementID
	row[colLine] = strconv.Itoa(tx.LineNumber)
	row[colOperationDate] = tx.OperationDate.Format(amount.DateFormat)
	row[colDebit] = tx.Debit.String()
	row[colCredit] = tx.Credit.String()
	row[colCurrency] = tx.Currency
	row[colExchangeRate] = tx.ExchangeRate.String()
	row[colAmountKZT] = tx.AmountKZT.String()
	row[colKNP] = tx.KNP
	row[colKNPNormalized] = flags.KNPNormalized
	row[colPurpose] = tx.Purpose
	row[colCounterparty] = tx.Counterparty
	row[colBusinessIncome] = strconv.FormatBool(flags.BusinessIncome)
	row[colExclusionReason] = flags.ExclusionReason
	return row
}

// UnmarshalTransaction converts a CSV row back to a transaction and the flag
// fields the row carries.
func UnmarshalTransaction(record []string) (model.Transaction, model.Flags, error) {
	if len(record) != txNumFields {
		return model.Transaction{}, model.Flags{}, fmt.Errorf("expected %d fields, got %d", txNumFields, len(record))
	}

	line, err := strconv.Atoi(record[colLine])
	if err != nil {
		return model.Transaction{}, model.Flags{}, fmt.Errorf("parsing line %q: %w", record[colLine], err)
	}
	opDate, err := amount.ParseDate(record[colOperationDate])
	if err != nil {
		return model.Transaction{}, model.Flags{}, fmt.Errorf("parsing operation date %q: %w", record[colOperationDate], err)
	}

	tx := model.Transaction{
		StatementID:   record[colStatementID],
		LineNumber:    line,
		OperationDate: opDate,
		Currency:      record[colCurrency],
		KNP:           record[colKNP],
		Purpose:       record[colPurpose],
		Counterparty:  record[colCounterparty],
	}
	for col, dst := range map[int]*decimal.Decimal{
		colDebit:        &tx.Debit,
		colCredit:       &tx.Credit,
		colExchangeRate: &tx.ExchangeRate,
		colAmountKZT:    &tx.AmountKZT,
	} {
		d, err := decimal.NewFromString(record[col])
		if err != nil {
			return model.Transaction{}, model.Flags{}, fmt.Errorf("parsing amount %q: %w", record[col], err)
		}
		*dst = d
	}

	business, err := strconv.ParseBool(record[colBusinessIncome])
	if err != nil {
		return model.Transaction{}, model.Flags{}, fmt.Errorf("parsing business_income %q: %w", record[colBusinessIncome], err)
	}

	flags := model.Flags{
		KNPNormalized:   record[colKNPNormalized],
		BusinessIncome:  business,
		ExclusionReason: record[colExclusionReason],
	}
	if business {
		flags.IPCreditAmount = tx.Credit
	}
	return tx, flags, nil
}

// WriteTransactions writes all transactions of the result set, flags merged in.
func WriteTransactions(w io.Writer, results []pipeline.StatementResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(TransactionsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, res := range results {
		for i, tx := range res.Transactions {
			if err := cw.Write(MarshalTransaction(tx, res.Flags[i])); err != nil {
				return fmt.Errorf("writing transaction row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTransactions reads a transactions.csv back into memory.
func ReadTransactions(r io.Reader) ([]model.Transaction, []model.Flags, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil, nil
	}

	var txs []model.Transaction
	var flags []model.Flags
	for i, rec := range records[1:] {
		tx, f, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
		flags = append(flags, f)
	}
	return txs, flags, nil
}

// MonthlyHeader is the CSV header of monthly.csv.
const MonthlyHeader = "statement_id,month,business_income,transaction_count"

// WriteMonthly writes the monthly buckets of the result set.
func WriteMonthly(w io.Writer, results []pipeline.StatementResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(MonthlyHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, res := range results {
		for _, b := range res.Monthly {
			row := []string{
				b.StatementID,
				id.MonthKey(b.Month),
				b.BusinessIncome.String(),
				strconv.Itoa(b.TransactionCount),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing monthly row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryHeader is the CSV header of summary.csv.
const SummaryHeader = "statement_id,source,bank,total_income,total_income_adjusted,formula,transactions_used,transactions_excluded,balance_matches,validation_score,validation_flags"

// WriteSummaries writes one row per statement: income summary plus the
// validation outcome.
func WriteSummaries(w io.Writer, results []pipeline.StatementResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(SummaryHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, res := range results {
		row := []string{
			res.StatementID,
			res.SourceName,
			string(res.Bank),
			res.Summary.TotalIncome.String(),
			res.Summary.TotalIncomeAdjusted.String(),
			res.Summary.FormulaID,
			strconv.Itoa(res.Summary.TransactionsUsed),
			strconv.Itoa(res.Summary.TransactionsExcluded),
			strconv.FormatBool(res.Validation.BalanceMatches),
			strconv.FormatFloat(res.Validation.ValidationScore, 'f', 4, 64),
			strings.Join(res.Validation.Flags, "|"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAll writes transactions.csv, monthly.csv and summary.csv into dir,
// creating it if needed.
func WriteAll(dir string, results []pipeline.StatementResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer, []pipeline.StatementResult) error
	}{
		{TransactionsFile, WriteTransactions},
		{MonthlyFile, WriteMonthly},
		{SummaryFile, WriteSummaries},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write, results); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer, []pipeline.StatementResult) error, results []pipeline.StatementResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := write(f, results); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
