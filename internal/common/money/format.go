// Package money renders whole-unit amounts as localized currency strings.
package money

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// nbsp separates the symbol from the digits, as browsers' Intl output does.
const nbsp = "\u00a0"

var symbols = map[currency.Unit]string{
	currency.IDR:                 "Rp",
	currency.USD:                 "US$",
	currency.MustParseISO("SGD"): "S$",
	currency.MustParseISO("MYR"): "RM",
	currency.EUR:                 "€",
}

// Formatter formats amounts in Unit using the grouping rules of Tag.
// Amounts are whole currency units; no fraction digits are printed.
type Formatter struct {
	Unit currency.Unit
	Tag  language.Tag

	printer *message.Printer
}

// NewFormatter builds a formatter for an ISO 4217 code and a BCP 47 locale.
func NewFormatter(code, locale string) (*Formatter, error) {
	unit, err := Parse(code)
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Formatter{Unit: unit, Tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Parse validates an ISO 4217 currency code.
func Parse(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("parse currency %q: %w", code, err)
	}
	return unit, nil
}

// Format renders amount, e.g. "Rp 150.000" for IDR in id-ID.
func (f *Formatter) Format(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + f.symbol() + nbsp + f.group(amount)
}

// Grouped renders amount with locale digit grouping and no symbol.
func (f *Formatter) Grouped(amount int64) string {
	if amount < 0 {
		return "-" + f.group(amount)
	}
	return f.group(amount)
}

// group prints |amount|. The uint64 conversion keeps math.MinInt64 intact.
func (f *Formatter) group(amount int64) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(f.Tag)
	}
	u := uint64(amount)
	if amount < 0 {
		u = uint64(-amount)
	}
	return p.Sprintf("%d", u)
}

func (f *Formatter) symbol() string {
	if s, ok := symbols[f.Unit]; ok {
		return s
	}
	return f.Unit.String()
}

var idr = &Formatter{
	Unit:    currency.IDR,
	Tag:     language.Indonesian,
	printer: message.NewPrinter(language.Indonesian),
}

// FormatIDR formats amount as Indonesian rupiah.
func FormatIDR(amount int64) string {
	return idr.Format(amount)
}

// GroupIDR renders amount with id-ID grouping, e.g. "150.000".
func GroupIDR(amount int64) string {
	return idr.Grouped(amount)
}
