// Package format renders prediction results for display.
package format

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts as currency strings for one locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// Option customises a Formatter.
type Option func(*Formatter)

// WithSymbol replaces the currency symbol prefix.
func WithSymbol(symbol string) Option {
	return func(f *Formatter) {
		f.symbol = symbol
	}
}

// WithLanguage selects the locale used for digit grouping.
func WithLanguage(tag language.Tag) Option {
	return func(f *Formatter) {
		f.printer = message.NewPrinter(tag)
	}
}

// New returns a Formatter defaulting to US English and a "$" prefix.
func New(options ...Option) *Formatter {
	f := &Formatter{
		printer: message.NewPrinter(language.AmericanEnglish),
		symbol:  "$",
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Currency formats v with two decimals and thousands grouping, e.g.
// "$23,456.79". The printer rounds half to even on the exact binary value
// and negative amounts print after the symbol ("$-1,234.50").
func (f *Formatter) Currency(v float64) string {
	out := f.printer.Sprintf("%.2f", v)
	if strings.HasPrefix(out, "-") && strings.Trim(out[1:], "0.,") == "" {
		out = out[1:]
	}
	return f.symbol + out
}

var defaultFormatter = New()

// Currency formats v with the default US English formatter.
func Currency(v float64) string {
	return defaultFormatter.Currency(v)
}
