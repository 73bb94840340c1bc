package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// pdfPages extracts the text of each PDF page, preserving row order.
// The library panics on some malformed files, so extraction runs behind
// a recover.
func pdfPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	if !isReadable(pages) {
		return nil, fmt.Errorf("no readable text extracted; document may be a scanned copy")
	}
	return pages, nil
}

// isReadable guards against image-only or custom-font PDFs that decode to
// garbage: requires some minimum of text with a majority of sane runes.
func isReadable(pages []string) bool {
	total, readable := 0, 0
	for _, p := range pages {
		for _, r := range p {
			total++
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()№₸%«»+", r) {
				readable++
			}
		}
	}
	if total < 50 {
		return false
	}
	return float64(readable)/float64(total) > 0.6
}
