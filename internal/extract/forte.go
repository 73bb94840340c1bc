package extract

import (
	"fmt"
	"strings"

	"github.com/ipincome-dev/ipincome/internal/model"
)

// Forte extracts ForteBank current account statements. The closing balance
// is printed only in the footer; the validator falls back to it when the
// header has none.
type Forte struct{}

var forteMarkers = []string{
	"fortebank",
	"выписка",
	"назначение платежа",
}

const forteColumns = 8

const (
	forteColDate = iota
	forteColValueDate
	forteColDocNo
	forteColDebit
	forteColCredit
	forteColKNP
	forteColCounterparty
	forteColPurpose
)

func (s *Forte) Bank() model.Bank { return model.BankForte }

func (s *Forte) Detect(pages []string) float64 {
	return markerConfidence(pages, forteMarkers)
}

func (s *Forte) Extract(pages []string) (model.Header, model.Footer, []model.RawLine, error) {
	lines := textLines(pages)

	tableStart := findLine(lines, "Назначение платежа")
	if tableStart < 0 {
		return model.Header{}, model.Footer{}, nil,
			fmt.Errorf("%w: forte transaction table not found", ErrCorruptDocument)
	}

	headerLines := lines[:tableStart]
	header := model.Header{
		AccountHolder:  labelValue(headerLines, "Клиент"),
		IINBIN:         labelValue(headerLines, "ИИН"),
		AccountNumber:  labelValue(headerLines, "Счет"),
		Currency:       labelValue(headerLines, "Валюта"),
		OpeningBalance: labelAmount(headerLines, "Входящий остаток"),
		RawText:        joinLines(headerLines),
	}
	header.PeriodFrom, header.PeriodTo = periodRange(headerLines, "Период")

	footerStart := findLine(lines, "Итого обороты")
	rowLines := lines[tableStart+1:]
	var footer model.Footer
	if footerStart > tableStart {
		rowLines = lines[tableStart+1 : footerStart]
		footerLines := lines[footerStart:]
		footer = model.Footer{
			TotalDebit:     labelAmount(footerLines, "Итого обороты по дебету"),
			TotalCredit:    labelAmount(footerLines, "Итого обороты по кредиту"),
			ClosingBalance: labelAmount(footerLines, "Исходящий остаток"),
			RawText:        joinLines(footerLines),
		}
	}

	var raws []model.RawLine
	for _, l := range rowLines {
		raw := model.RawLine{Number: len(raws) + 1, Text: l}
		if cols := splitColumns(l); len(cols) >= forteColumns {
			raw.OperationDate = cols[forteColDate]
			raw.ValueDate = cols[forteColValueDate]
			raw.DocumentNo = cols[forteColDocNo]
			raw.Debit = cols[forteColDebit]
			raw.Credit = cols[forteColCredit]
			raw.KNP = cols[forteColKNP]
			raw.Counterparty = cols[forteColCounterparty]
			raw.Purpose = strings.Join(cols[forteColPurpose:], " ")
		}
		raws = append(raws, raw)
	}

	return header, footer, raws, nil
}
