package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ipincome-dev/ipincome/internal/amount"
)

// Layouts print tables with columns separated by tabs or runs of spaces;
// empty amount cells are printed as "-".
var columnSplit = regexp.MustCompile(`\t+|\s{2,}`)

var datePair = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})\s*[-–—]?\s*(?:по\s*)?(\d{2}\.\d{2}\.\d{4})`)

func splitColumns(line string) []string {
	parts := columnSplit.Split(strings.TrimSpace(line), -1)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func textLines(pages []string) []string {
	var lines []string
	for _, p := range pages {
		for _, l := range strings.Split(p, "\n") {
			if strings.TrimSpace(l) != "" {
				lines = append(lines, l)
			}
		}
	}
	return lines
}

// markerConfidence is the fraction of signature markers present in the
// document text, compared case-insensitively.
func markerConfidence(pages []string, markers []string) float64 {
	if len(markers) == 0 {
		return 0
	}
	text := strings.ToLower(strings.Join(pages, "\n"))
	found := 0
	for _, m := range markers {
		if strings.Contains(text, strings.ToLower(m)) {
			found++
		}
	}
	return float64(found) / float64(len(markers))
}

// findLine returns the index of the first line containing substr
// (case-insensitive), or -1.
func findLine(lines []string, substr string) int {
	needle := strings.ToLower(substr)
	for i, l := range lines {
		if strings.Contains(strings.ToLower(l), needle) {
			return i
		}
	}
	return -1
}

// labelValue returns the text after "label:" on the first line starting
// with the label.
func labelValue(lines []string, label string) string {
	re := regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(label) + `\s*:?\s*(.+)`)
	for _, l := range lines {
		if m := re.FindStringSubmatch(l); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// labelAmount parses the amount following a label, or nil when the label is
// absent or its value is unreadable. Extraction degrades field by field
// rather than failing the statement.
func labelAmount(lines []string, label string) *decimal.Decimal {
	v := labelValue(lines, label)
	if v == "" {
		return nil
	}
	d, err := amount.Parse(v)
	if err != nil {
		return nil
	}
	return &d
}

// periodRange finds the statement period on the line carrying the label,
// accepting both "01.01.2025 - 31.01.2025" and "с 01.01.2025 по 31.01.2025".
func periodRange(lines []string, label string) (*time.Time, *time.Time) {
	i := findLine(lines, label)
	if i < 0 {
		return nil, nil
	}
	m := datePair.FindStringSubmatch(lines[i])
	if m == nil {
		return nil, nil
	}
	from, err1 := time.Parse(amount.DateFormat, m[1])
	to, err2 := time.Parse(amount.DateFormat, m[2])
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &from, &to
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
