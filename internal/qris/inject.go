package qris

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNegativeAmount = errors.New("qris: amount must not be negative")

// AmountField builds the tag-54 field for amount.
func AmountField(amount int64) (Field, error) {
	if amount < 0 {
		return Field{}, fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	return Field{Tag: TagAmount, Value: strconv.FormatInt(amount, 10)}, nil
}

// InjectAmount returns template with a tag-54 amount field placed before the
// country code (tag 58) and a freshly computed checksum. Without a tag 58 the
// amount goes last. A template that cannot be tokenized is handled by plain
// string splicing, so the call only fails for a negative amount.
func InjectAmount(template string, amount int64) (string, error) {
	field, err := AmountField(amount)
	if err != nil {
		return "", err
	}

	fields, err := Parse(template)
	if err != nil || !endsWithChecksum(fields) {
		return spliceAmount(template, field.String()), nil
	}

	out, err := Encode(insertAmount(fields, field))
	if err != nil {
		return spliceAmount(template, field.String()), nil
	}
	return seal(out), nil
}

func endsWithChecksum(fields []Field) bool {
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	return last.Tag == TagChecksum && len(last.Value) == 4
}

// insertAmount drops the checksum and any existing amount, then inserts field
// ahead of the country code.
func insertAmount(fields []Field, field Field) []Field {
	out := make([]Field, 0, len(fields)+1)
	for _, f := range fields {
		if f.Tag == TagChecksum || f.Tag == TagAmount {
			continue
		}
		out = append(out, f)
	}

	i := indexOf(out, TagCountryCode)
	if i < 0 {
		return append(out, field)
	}

	out = append(out, Field{})
	copy(out[i+1:], out[i:])
	out[i] = field
	return out
}

// spliceAmount works on raw text for templates the tokenizer rejects.
func spliceAmount(template, amountField string) string {
	body := ""
	if len(template) > 4 {
		body = strings.TrimSuffix(template[:len(template)-4], checksumPrefix)
	}

	if i := strings.Index(body, TagCountryCode+"02"); i >= 0 {
		body = body[:i] + amountField + body[i:]
	} else {
		body += amountField
	}
	return seal(body)
}

// Generator derives dynamic payment strings from one static merchant template.
type Generator struct {
	template string
}

// NewGenerator checks that template is a well-formed payment string.
func NewGenerator(template string) (*Generator, error) {
	if _, err := Parse(template); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if !ValidateChecksum(template) {
		return nil, fmt.Errorf("template: %w", ErrChecksumMismatch)
	}
	return &Generator{template: template}, nil
}

// Template returns the static template the generator was built with.
func (g *Generator) Template() string {
	return g.template
}

// Generate injects amount into the template.
func (g *Generator) Generate(amount int64) (string, error) {
	return InjectAmount(g.template, amount)
}
