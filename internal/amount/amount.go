// Package amount parses the number and date formats Kazakhstani bank
// statements print: space-grouped thousands, comma or point decimal marks,
// DD.MM.YYYY dates with optional time.
package amount

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the operation date layout used by all supported banks.
const DateFormat = "02.01.2006"

var (
	datePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	junkPattern = regexp.MustCompile(`[^0-9.\-]`)
)

// Parse converts strings like "5 576 876,37", "0,00" or "-1 200.50" to a
// decimal. Tolerates NBSP and narrow-NBSP grouping and a currency suffix.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("\u00a0", "", "\u202f", "", " ", "").Replace(s)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = junkPattern.ReplaceAllString(cleaned, "")
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return decimal.Decimal{}, fmt.Errorf("no digits in amount %q", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// ParseOptional is Parse for fields that may legitimately be empty or a
// dash placeholder; those return zero without error.
func ParseOptional(s string) (decimal.Decimal, error) {
	t := strings.TrimSpace(s)
	if t == "" || t == "-" || t == "—" {
		return decimal.Zero, nil
	}
	return Parse(t)
}

// ParseDate extracts the first DD.MM.YYYY date from a string, ignoring any
// time suffix the layout prints next to it.
func ParseDate(s string) (time.Time, error) {
	m := datePattern.FindString(s)
	if m == "" {
		return time.Time{}, fmt.Errorf("no date in %q", s)
	}
	t, err := time.Parse(DateFormat, m)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", m, err)
	}
	return t, nil
}
