// Package pipeline sequences extraction, normalization, classification,
// aggregation and validation for one statement, and runs whole projects of
// statements concurrently. A fatal failure aborts only its own statement;
// sibling statements keep processing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ipincome-dev/ipincome/internal/aggregate"
	"github.com/ipincome-dev/ipincome/internal/classify"
	"github.com/ipincome-dev/ipincome/internal/config"
	"github.com/ipincome-dev/ipincome/internal/extract"
	"github.com/ipincome-dev/ipincome/internal/id"
	"github.com/ipincome-dev/ipincome/internal/model"
	"github.com/ipincome-dev/ipincome/internal/normalize"
	"github.com/ipincome-dev/ipincome/internal/validate"
)

// ErrSkipRatioExceeded aborts a statement when too many of its rows failed
// to normalize for the remainder to be trusted.
var ErrSkipRatioExceeded = errors.New("skipped row ratio exceeds threshold")

// maxMessageErrors caps how many row errors are spelled out in the
// statement message before it is truncated.
const maxMessageErrors = 5

// Processor runs the statement pipeline against one compiled ruleset.
type Processor struct {
	registry *extract.Registry
	rules    *config.Compiled
}

// New builds a Processor. The ruleset must already be compiled, which
// guarantees it passed validation.
func New(registry *extract.Registry, rules *config.Compiled) *Processor {
	return &Processor{registry: registry, rules: rules}
}

// StatementResult is the atomic output set of one successfully processed
// statement. Flags are positionally 1:1 with Transactions.
type StatementResult struct {
	StatementID  string
	SourceName   string
	Bank         model.Bank
	Header       model.Header
	Footer       model.Footer
	Transactions []model.Transaction
	Flags        []model.Flags
	RowErrors    []normalize.RowError
	Monthly      []model.MonthlyBucket
	Summary      model.Summary
	Validation   model.ValidationReport
	Warning      bool // balance mismatch or skipped rows
	Message      string
}

// ProcessStatement runs the full pipeline for one document. A returned error
// means the statement produced no result set at all; row-level problems are
// recorded on the result instead. A context error means the statement was
// abandoned, not that it failed.
func (p *Processor) ProcessStatement(ctx context.Context, doc model.Document) (StatementResult, error) {
	if err := ctx.Err(); err != nil {
		return StatementResult{}, err
	}

	strategy, pages, err := p.registry.Resolve(doc)
	if err != nil {
		return StatementResult{}, err
	}
	header, footer, lines, err := strategy.Extract(pages)
	if err != nil {
		return StatementResult{}, err
	}

	statementID := id.NewStatementID()
	txs, rowErrs := normalize.Rows(lines, normalize.Options{StatementID: statementID})

	totalRows := len(lines)
	if totalRows > 0 {
		ratio := float64(len(rowErrs)) / float64(totalRows)
		if ratio > p.rules.SkipRatioThreshold {
			return StatementResult{}, fmt.Errorf("%w: %d of %d rows skipped",
				ErrSkipRatioExceeded, len(rowErrs), totalRows)
		}
	}

	if err := ctx.Err(); err != nil {
		return StatementResult{}, err
	}

	flags := classify.All(txs, p.rules)
	buckets := aggregate.Monthly(statementID, txs, flags)
	summary, err := aggregate.Summarize(statementID, txs, flags, p.rules)
	if err != nil {
		return StatementResult{}, err
	}

	report := validate.Report(validate.Input{
		StatementID:  statementID,
		Header:       header,
		Footer:       footer,
		Transactions: txs,
		SkippedRows:  len(rowErrs),
		TotalRows:    totalRows,
		Processor:    string(strategy.Bank()),
	}, p.rules)

	return StatementResult{
		StatementID:  statementID,
		SourceName:   doc.Name,
		Bank:         strategy.Bank(),
		Header:       header,
		Footer:       footer,
		Transactions: txs,
		Flags:        flags,
		RowErrors:    rowErrs,
		Monthly:      buckets,
		Summary:      summary,
		Validation:   report,
		Warning:      !report.BalanceMatches || len(rowErrs) > 0,
		Message:      statementMessage(rowErrs, report),
	}, nil
}

// statementMessage accumulates recoverable problems into one human-readable
// line for the project link.
func statementMessage(rowErrs []normalize.RowError, report model.ValidationReport) string {
	var parts []string
	for i, re := range rowErrs {
		if i == maxMessageErrors {
			parts = append(parts, fmt.Sprintf("and %d more skipped rows", len(rowErrs)-i))
			break
		}
		parts = append(parts, re.Error())
	}
	if !report.BalanceMatches {
		parts = append(parts, "balance mismatch: "+strings.Join(report.Flags, ","))
	}
	return strings.Join(parts, "; ")
}
