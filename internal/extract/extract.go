// Package extract turns raw statement documents into structured header and
// footer fields plus an ordered sequence of raw operation lines. Each
// supported bank layout is one Strategy; selection picks the strategy with
// the highest detection confidence.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ipincome-dev/ipincome/internal/model"
)

// ErrUnsupportedFormat means no layout strategy reached the minimum
// detection confidence for the document.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

// ErrCorruptDocument means a layout matched but its mandatory structural
// markers are missing or unreadable.
var ErrCorruptDocument = errors.New("corrupt statement document")

// MinConfidence is the detection threshold below which a document is
// treated as unsupported.
const MinConfidence = 0.5

// Strategy extracts one bank's statement layout.
type Strategy interface {
	// Bank returns the layout's bank key.
	Bank() model.Bank
	// Detect returns a 0..1 confidence that pages are this bank's layout.
	Detect(pages []string) float64
	// Extract parses pages into header, footer and ordered operation lines.
	Extract(pages []string) (model.Header, model.Footer, []model.RawLine, error)
}

// Registry holds the known layout strategies.
type Registry struct {
	strategies map[model.Bank]Strategy
	order      []model.Bank
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[model.Bank]Strategy)}
}

// Register adds a strategy. Panics on duplicate bank.
func (r *Registry) Register(s Strategy) {
	if _, ok := r.strategies[s.Bank()]; ok {
		panic("duplicate strategy for bank: " + string(s.Bank()))
	}
	r.strategies[s.Bank()] = s
	r.order = append(r.order, s.Bank())
}

// Get returns the strategy for a bank, or nil.
func (r *Registry) Get(bank model.Bank) Strategy {
	return r.strategies[bank]
}

// Select returns the strategy with the highest detection confidence.
// Registration order breaks ties.
func (r *Registry) Select(pages []string) (Strategy, float64) {
	var best Strategy
	bestConf := 0.0
	for _, bank := range r.order {
		s := r.strategies[bank]
		if conf := s.Detect(pages); conf > bestConf {
			best, bestConf = s, conf
		}
	}
	return best, bestConf
}

// DefaultRegistry returns a registry with all built-in layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&KaspiGold{})
	r.Register(&KaspiPay{})
	r.Register(&HalykBusiness{})
	r.Register(&HalykIndividual{})
	r.Register(&Forte{})
	return r
}

// Resolve turns a raw document into text pages and the layout strategy that
// will extract it: the declared bank's strategy when one is set, otherwise
// the best-detecting one.
func (r *Registry) Resolve(doc model.Document) (Strategy, []string, error) {
	pages, err := Pages(doc)
	if err != nil {
		return nil, nil, err
	}

	if doc.Bank != model.BankAuto {
		strategy := r.Get(doc.Bank)
		if strategy == nil {
			return nil, nil, fmt.Errorf("%w: unknown bank %q", ErrUnsupportedFormat, doc.Bank)
		}
		if strategy.Detect(pages) < MinConfidence {
			return nil, nil, fmt.Errorf("%w: document does not look like %s", ErrUnsupportedFormat, doc.Bank)
		}
		return strategy, pages, nil
	}

	strategy, conf := r.Select(pages)
	if strategy == nil || conf < MinConfidence {
		return nil, nil, fmt.Errorf("%w: best confidence %.2f below %.2f", ErrUnsupportedFormat, conf, MinConfidence)
	}
	return strategy, pages, nil
}

// Document extracts a raw document: resolves its pages, picks the layout
// (declared bank or auto-detection) and runs extraction.
func (r *Registry) Document(doc model.Document) (model.Header, model.Footer, []model.RawLine, error) {
	strategy, pages, err := r.Resolve(doc)
	if err != nil {
		return model.Header{}, model.Footer{}, nil, err
	}
	return strategy.Extract(pages)
}

// Pages resolves document bytes into text pages. PDF payloads go through
// the PDF text extractor; anything else is treated as UTF-8 statement text
// with form-feed page breaks.
func Pages(doc model.Document) ([]string, error) {
	if isPDF(doc.Bytes) {
		pages, err := pdfPages(doc.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, doc.Name, err)
		}
		return pages, nil
	}

	text := string(doc.Bytes)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s: empty document", ErrCorruptDocument, doc.Name)
	}
	return strings.Split(text, "\f"), nil
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}
