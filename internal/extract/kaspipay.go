package extract

import (
	"fmt"
	"strings"

	"github.com/ipincome-dev/ipincome/internal/model"
)

// KaspiPay extracts Kaspi Pay merchant statements: a nine-column operation
// table with document numbers, split debit/credit and KNP codes.
type KaspiPay struct{}

var kaspiPayMarkers = []string{
	"kaspi bank",
	"kaspi pay",
	"№ документа",
}

const kaspiPayColumns = 9

const (
	kaspiPayColDocNo = iota
	kaspiPayColDate
	kaspiPayColDebit
	kaspiPayColCredit
	kaspiPayColCounterparty
	kaspiPayColAccount
	kaspiPayColBankCode
	kaspiPayColKNP
	kaspiPayColPurpose
)

func (s *KaspiPay) Bank() model.Bank { return model.BankKaspiPay }

func (s *KaspiPay) Detect(pages []string) float64 {
	return markerConfidence(pages, kaspiPayMarkers)
}

func (s *KaspiPay) Extract(pages []string) (model.Header, model.Footer, []model.RawLine, error) {
	lines := textLines(pages)

	tableStart := findLine(lines, "№ документа")
	if tableStart < 0 {
		return model.Header{}, model.Footer{}, nil,
			fmt.Errorf("%w: kaspi pay transaction table not found", ErrCorruptDocument)
	}

	headerLines := lines[:tableStart]
	header := model.Header{
		AccountHolder:  labelValue(headerLines, "Клиент"),
		IINBIN:         labelValue(headerLines, "ИИН/БИН"),
		AccountNumber:  labelValue(headerLines, "Номер счета"),
		Currency:       labelValue(headerLines, "Валюта"),
		OpeningBalance: labelAmount(headerLines, "Входящий остаток"),
		ClosingBalance: labelAmount(headerLines, "Исходящий остаток"),
		RawText:        joinLines(headerLines),
	}
	header.PeriodFrom, header.PeriodTo = periodRange(headerLines, "Период")

	footerStart := findLine(lines, "Обороты по")
	rowLines := lines[tableStart+1:]
	var footer model.Footer
	if footerStart > tableStart {
		rowLines = lines[tableStart+1 : footerStart]
		footerLines := lines[footerStart:]
		footer = model.Footer{
			TotalDebit:     labelAmount(footerLines, "Обороты по дебету"),
			TotalCredit:    labelAmount(footerLines, "Обороты по кредиту"),
			ClosingBalance: labelAmount(footerLines, "Исходящий остаток"),
			RawText:        joinLines(footerLines),
		}
	}

	var raws []model.RawLine
	for _, l := range rowLines {
		raw := model.RawLine{Number: len(raws) + 1, Text: l}
		if cols := splitColumns(l); len(cols) >= kaspiPayColumns {
			raw.DocumentNo = cols[kaspiPayColDocNo]
			raw.OperationDate = cols[kaspiPayColDate]
			raw.Debit = cols[kaspiPayColDebit]
			raw.Credit = cols[kaspiPayColCredit]
			raw.Counterparty = cols[kaspiPayColCounterparty]
			raw.CounterpartyAccount = cols[kaspiPayColAccount]
			raw.BankCode = cols[kaspiPayColBankCode]
			raw.KNP = cols[kaspiPayColKNP]
			// The purpose column may itself contain column-width gaps.
			raw.Purpose = strings.Join(cols[kaspiPayColPurpose:], " ")
		}
		raws = append(raws, raw)
	}

	return header, footer, raws, nil
}
