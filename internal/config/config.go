package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Ruleset is the top-level rules.yaml configuration: the business rules for
// income classification, balance validation and pipeline thresholds. It is
// loaded once per run and treated as an immutable snapshot.
type Ruleset struct {
	Version string `yaml:"version"`

	// KNP exclusion codes. The base set is always active; the extra set
	// applies only to operations dated on or after ExtraKNPCutoffDate.
	ExcludedKNPBase    []string `yaml:"excluded_knp_base"`
	ExcludedKNPExtra   []string `yaml:"excluded_knp_extra,omitempty"`
	ExtraKNPCutoffDate string   `yaml:"extra_knp_cutoff_date,omitempty"` // "2006-01-02"

	// Keyword rules, matched case-insensitively against purpose+counterparty
	// of credit transactions.
	NonBusinessKeywords   []string `yaml:"non_business_keywords"`
	KeepKeywordsKNP099    []string `yaml:"keep_keywords_knp_099,omitempty"`
	WhitelistBankKeywords []string `yaml:"whitelist_bank_keywords,omitempty"`

	// BalanceEpsilon is the rollforward matching tolerance, kept as a
	// decimal string so the comparison stays exact.
	BalanceEpsilon string `yaml:"balance_epsilon"`

	// SkipRatioThreshold aborts a statement when the skipped-row fraction
	// exceeds it.
	SkipRatioThreshold float64 `yaml:"skip_ratio_threshold"`

	Formula FormulaConfig `yaml:"formula"`
	Weights ScoreWeights  `yaml:"score_weights"`
}

// FormulaConfig names the adjusted-income formula applied to total income.
// ID selects the computation; Notes is persisted for audit.
type FormulaConfig struct {
	ID    string `yaml:"id"`
	Notes string `yaml:"notes"`
}

// ScoreWeights weight the validation score components. They must sum to 1.
type ScoreWeights struct {
	Balance      float64 `yaml:"balance"`
	Completeness float64 `yaml:"completeness"`
	Rows         float64 `yaml:"rows"`
}

// ValidationError reports the ruleset keys that are missing or invalid.
// The pipeline refuses to start on a non-nil ValidationError.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid ruleset: " + strings.Join(e.Problems, "; ")
}

// Load reads a rules.yaml file from disk.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset: %w", err)
	}
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing ruleset: %w", err)
	}
	return &rs, nil
}

// Save writes a Ruleset to a YAML file.
func Save(path string, rs *Ruleset) error {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshaling ruleset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing ruleset: %w", err)
	}
	return nil
}

// Validate checks that the required keys are present and parseable.
func (rs *Ruleset) Validate() error {
	var problems []string

	if rs.Version == "" {
		problems = append(problems, "version is required")
	}
	if len(rs.ExcludedKNPBase) == 0 {
		problems = append(problems, "excluded_knp_base must not be empty")
	}
	if len(rs.ExcludedKNPExtra) > 0 && rs.ExtraKNPCutoffDate == "" {
		problems = append(problems, "extra_knp_cutoff_date is required when excluded_knp_extra is set")
	}
	if rs.ExtraKNPCutoffDate != "" {
		if _, err := time.Parse("2006-01-02", rs.ExtraKNPCutoffDate); err != nil {
			problems = append(problems, fmt.Sprintf("extra_knp_cutoff_date %q is not YYYY-MM-DD", rs.ExtraKNPCutoffDate))
		}
	}
	if rs.BalanceEpsilon == "" {
		problems = append(problems, "balance_epsilon is required")
	} else if eps, err := decimal.NewFromString(rs.BalanceEpsilon); err != nil || eps.IsNegative() {
		problems = append(problems, fmt.Sprintf("balance_epsilon %q is not a non-negative decimal", rs.BalanceEpsilon))
	}
	if rs.SkipRatioThreshold <= 0 || rs.SkipRatioThreshold > 1 {
		problems = append(problems, "skip_ratio_threshold must be in (0, 1]")
	}
	if rs.Formula.ID == "" {
		problems = append(problems, "formula.id is required")
	}
	sum := rs.Weights.Balance + rs.Weights.Completeness + rs.Weights.Rows
	if sum < 0.999 || sum > 1.001 {
		problems = append(problems, fmt.Sprintf("score_weights must sum to 1, got %.3f", sum))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Compiled is the parsed, lookup-ready form of a Ruleset. Sets are
// normalized the way the classifier needs them; the struct is never
// mutated after Compile returns it.
type Compiled struct {
	Version string

	BaseCodes   map[string]bool // normalized KNP codes
	ExtraCodes  map[string]bool
	ExtraCutoff time.Time // zero when no extra set is configured

	Keywords       []string // lowercased
	KeepKNP099     []string
	WhitelistBanks []string

	Epsilon            decimal.Decimal
	SkipRatioThreshold float64

	FormulaID    string
	FormulaNotes string
	Weights      ScoreWeights
}

// Compile validates the ruleset and returns its lookup-ready form.
func (rs *Ruleset) Compile() (*Compiled, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	c := &Compiled{
		Version:            rs.Version,
		BaseCodes:          normalizeCodeSet(rs.ExcludedKNPBase),
		ExtraCodes:         normalizeCodeSet(rs.ExcludedKNPExtra),
		Keywords:           lowerAll(rs.NonBusinessKeywords),
		KeepKNP099:         lowerAll(rs.KeepKeywordsKNP099),
		WhitelistBanks:     lowerAll(rs.WhitelistBankKeywords),
		SkipRatioThreshold: rs.SkipRatioThreshold,
		FormulaID:          rs.Formula.ID,
		FormulaNotes:       rs.Formula.Notes,
		Weights:            rs.Weights,
	}

	if rs.ExtraKNPCutoffDate != "" {
		cutoff, err := time.Parse("2006-01-02", rs.ExtraKNPCutoffDate)
		if err != nil {
			return nil, fmt.Errorf("parsing extra_knp_cutoff_date: %w", err)
		}
		c.ExtraCutoff = cutoff
	}

	eps, err := decimal.NewFromString(rs.BalanceEpsilon)
	if err != nil {
		return nil, fmt.Errorf("parsing balance_epsilon: %w", err)
	}
	c.Epsilon = eps

	return c, nil
}

// NormalizeKNP strips everything but digits from a payment code and trims
// leading zeros, so "012 " and "12" compare equal.
func NormalizeKNP(code string) string {
	var digits strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return strings.TrimLeft(digits.String(), "0")
}

func normalizeCodeSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		if n := NormalizeKNP(c); n != "" {
			set[n] = true
		}
	}
	return set
}

func lowerAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
