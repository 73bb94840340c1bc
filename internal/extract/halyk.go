package extract

import (
	"fmt"
	"strings"

	"github.com/ipincome-dev/ipincome/internal/model"
)

// HalykBusiness extracts Halyk Bank business account statements: an
// eight-column table keyed by counterparty, with turnover totals in the
// footer.
type HalykBusiness struct{}

var halykBusinessMarkers = []string{
	"народный банк",
	"корреспондент",
	"бин",
}

const halykBusinessColumns = 8

const (
	halykBizColDate = iota
	halykBizColDocNo
	halykBizColCounterparty
	halykBizColCounterpartyID
	halykBizColDebit
	halykBizColCredit
	halykBizColKNP
	halykBizColPurpose
)

func (s *HalykBusiness) Bank() model.Bank { return model.BankHalykBusiness }

func (s *HalykBusiness) Detect(pages []string) float64 {
	return markerConfidence(pages, halykBusinessMarkers)
}

func (s *HalykBusiness) Extract(pages []string) (model.Header, model.Footer, []model.RawLine, error) {
	lines := textLines(pages)

	tableStart := findLine(lines, "Корреспондент")
	if tableStart < 0 {
		return model.Header{}, model.Footer{}, nil,
			fmt.Errorf("%w: halyk business transaction table not found", ErrCorruptDocument)
	}

	headerLines := lines[:tableStart]
	header := model.Header{
		AccountHolder:  labelValue(headerLines, "Клиент"),
		IINBIN:         labelValue(headerLines, "БИН"),
		AccountNumber:  labelValue(headerLines, "Счет"),
		Currency:       labelValue(headerLines, "Валюта"),
		OpeningBalance: labelAmount(headerLines, "Входящий остаток"),
		ClosingBalance: labelAmount(headerLines, "Исходящий остаток"),
		RawText:        joinLines(headerLines),
	}
	header.PeriodFrom, header.PeriodTo = periodRange(headerLines, "период")

	footerStart := findLine(lines, "Обороты")
	rowLines := lines[tableStart+1:]
	var footer model.Footer
	if footerStart > tableStart {
		rowLines = lines[tableStart+1 : footerStart]
		footerLines := lines[footerStart:]
		footer = model.Footer{
			TotalDebit:  labelAmount(footerLines, "Обороты Дебет"),
			TotalCredit: labelAmount(footerLines, "Обороты Кредит"),
			RawText:     joinLines(footerLines),
		}
	}

	var raws []model.RawLine
	for _, l := range rowLines {
		raw := model.RawLine{Number: len(raws) + 1, Text: l}
		if cols := splitColumns(l); len(cols) >= halykBusinessColumns {
			raw.OperationDate = cols[halykBizColDate]
			raw.DocumentNo = cols[halykBizColDocNo]
			raw.Counterparty = cols[halykBizColCounterparty]
			raw.CounterpartyID = cols[halykBizColCounterpartyID]
			raw.Debit = cols[halykBizColDebit]
			raw.Credit = cols[halykBizColCredit]
			raw.KNP = cols[halykBizColKNP]
			raw.Purpose = strings.Join(cols[halykBizColPurpose:], " ")
		}
		raws = append(raws, raw)
	}

	return header, footer, raws, nil
}

// HalykIndividual extracts Halyk Bank card account statements for
// individuals. Rows carry the operation currency and exchange rate next to
// the account-currency debit/credit columns.
type HalykIndividual struct{}

var halykIndividualMarkers = []string{
	"народный банк",
	"в валюте счета",
	"иин",
}

const halykIndividualColumns = 8

const (
	halykIndColDate = iota
	halykIndColValueDate
	halykIndColCurrency
	halykIndColRate
	halykIndColDebit
	halykIndColCredit
	halykIndColKNP
	halykIndColPurpose
)

func (s *HalykIndividual) Bank() model.Bank { return model.BankHalykIndividual }

func (s *HalykIndividual) Detect(pages []string) float64 {
	return markerConfidence(pages, halykIndividualMarkers)
}

func (s *HalykIndividual) Extract(pages []string) (model.Header, model.Footer, []model.RawLine, error) {
	lines := textLines(pages)

	tableStart := findLine(lines, "в валюте счета")
	if tableStart < 0 {
		return model.Header{}, model.Footer{}, nil,
			fmt.Errorf("%w: halyk individual transaction table not found", ErrCorruptDocument)
	}

	headerLines := lines[:tableStart]
	header := model.Header{
		AccountHolder:  labelValue(headerLines, "Клиент"),
		IINBIN:         labelValue(headerLines, "ИИН"),
		AccountNumber:  labelValue(headerLines, "Счет"),
		Currency:       labelValue(headerLines, "Валюта счета"),
		OpeningBalance: labelAmount(headerLines, "Входящий остаток"),
		ClosingBalance: labelAmount(headerLines, "Исходящий остаток"),
		RawText:        joinLines(headerLines),
	}
	header.PeriodFrom, header.PeriodTo = periodRange(headerLines, "период")

	footerStart := findLine(lines, "Итого")
	rowLines := lines[tableStart+1:]
	var footer model.Footer
	if footerStart > tableStart {
		rowLines = lines[tableStart+1 : footerStart]
		// Halyk individual footers carry no totals, only the closing line.
		footer = model.Footer{RawText: joinLines(lines[footerStart:])}
	}

	var raws []model.RawLine
	for _, l := range rowLines {
		raw := model.RawLine{Number: len(raws) + 1, Text: l}
		if cols := splitColumns(l); len(cols) >= halykIndividualColumns {
			raw.OperationDate = cols[halykIndColDate]
			raw.ValueDate = cols[halykIndColValueDate]
			raw.Currency = cols[halykIndColCurrency]
			raw.ExchangeRate = cols[halykIndColRate]
			raw.Debit = cols[halykIndColDebit]
			raw.Credit = cols[halykIndColCredit]
			raw.KNP = cols[halykIndColKNP]
			raw.Purpose = strings.Join(cols[halykIndColPurpose:], " ")
		}
		raws = append(raws, raw)
	}

	return header, footer, raws, nil
}
