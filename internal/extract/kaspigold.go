package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ipincome-dev/ipincome/internal/amount"
	"github.com/ipincome-dev/ipincome/internal/model"
)

// KaspiGold extracts Kaspi Gold card statements: a single signed amount
// column, no KNP codes, balances printed as "Доступно на <date>" lines.
type KaspiGold struct{}

var kaspiGoldMarkers = []string{
	"kaspi bank",
	"kaspi gold",
	"доступно на",
}

// Row: date, signed amount, operation kind, details.
var kaspiGoldRow = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4})\s+([+-][\d\s\x{00a0}\x{202f}]+(?:[,.]\d{1,2})?)\s*₸?\s+(\S+)\s+(.*)$`)

var kaspiGoldBalance = regexp.MustCompile(`(?i)доступно на\s+\d{2}\.\d{2}\.\d{4}\s*:?\s*([\d\s\x{00a0}\x{202f}]+(?:[,.]\d{1,2})?)`)

func (s *KaspiGold) Bank() model.Bank { return model.BankKaspiGold }

func (s *KaspiGold) Detect(pages []string) float64 {
	return markerConfidence(pages, kaspiGoldMarkers)
}

func (s *KaspiGold) Extract(pages []string) (model.Header, model.Footer, []model.RawLine, error) {
	lines := textLines(pages)

	tableStart := -1
	for i, l := range lines {
		low := strings.ToLower(l)
		if strings.Contains(low, "дата") && strings.Contains(low, "сумма") && strings.Contains(low, "операция") {
			tableStart = i
			break
		}
	}
	if tableStart < 0 {
		return model.Header{}, model.Footer{}, nil,
			fmt.Errorf("%w: kaspi gold transaction table not found", ErrCorruptDocument)
	}

	headerLines := lines[:tableStart]
	header := model.Header{
		AccountHolder: labelValue(headerLines, "Ф.И.О."),
		IINBIN:        labelValue(headerLines, "ИИН"),
		AccountNumber: labelValue(headerLines, "Номер счета"),
		Currency:      labelValue(headerLines, "Валюта"),
		RawText:       joinLines(headerLines),
	}
	header.PeriodFrom, header.PeriodTo = periodRange(headerLines, "Период")
	if balances := kaspiGoldBalances(headerLines); len(balances) > 0 {
		header.OpeningBalance = &balances[0]
		if len(balances) > 1 {
			header.ClosingBalance = &balances[1]
		}
	}

	footerStart := findLine(lines, "Сумма пополнений")
	rowLines := lines[tableStart+1:]
	var footer model.Footer
	if footerStart > tableStart {
		rowLines = lines[tableStart+1 : footerStart]
		footerLines := lines[footerStart:]
		footer = model.Footer{
			TotalCredit: labelAmount(footerLines, "Сумма пополнений"),
			TotalDebit:  labelAmount(footerLines, "Сумма списаний"),
			RawText:     joinLines(footerLines),
		}
	}

	var raws []model.RawLine
	for _, l := range rowLines {
		raw := model.RawLine{Number: len(raws) + 1, Text: l}
		if m := kaspiGoldRow.FindStringSubmatch(l); m != nil {
			raw.OperationDate = m[1]
			raw.Amount = strings.TrimSpace(m[2])
			raw.Purpose = m[3]
			raw.Counterparty = strings.TrimSpace(m[4])
		}
		raws = append(raws, raw)
	}

	return header, footer, raws, nil
}

func kaspiGoldBalances(lines []string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, l := range lines {
		if m := kaspiGoldBalance.FindStringSubmatch(l); m != nil {
			if d, err := amount.Parse(m[1]); err == nil {
				out = append(out, d)
			}
		}
	}
	return out
}
