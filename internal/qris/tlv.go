// Package qris reads and writes EMV merchant-presented payment strings as used
// by the Indonesian QRIS network.
//
// A payment string is a flat sequence of TLV fields ("TT" tag, "LL" decimal
// length, value). Template tags carry a nested TLV block as their value. The
// last field is always tag 63, a CRC-16/CCITT-FALSE over everything before the
// checksum value.
package qris

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Well-known top-level tags.
const (
	TagPayloadFormat        = "00"
	TagPointOfInitiation    = "01"
	TagMerchantCategoryCode = "52"
	TagCurrency             = "53"
	TagAmount               = "54"
	TagCountryCode          = "58"
	TagMerchantName         = "59"
	TagMerchantCity         = "60"
	TagPostalCode           = "61"
	TagAdditionalData       = "62"
	TagChecksum             = "63"
)

// maxValueLength is the largest value the two-digit length subfield can describe.
const maxValueLength = 99

var (
	ErrTruncated     = errors.New("tlv: field runs past end of input")
	ErrInvalidTag    = errors.New("tlv: tag is not two decimal digits")
	ErrInvalidLength = errors.New("tlv: length is not two decimal digits")
	ErrNonASCII      = errors.New("tlv: input contains non-ASCII bytes")
	ErrValueTooLong  = errors.New("tlv: value longer than 99 characters")
)

// Field is one tag/value pair. The length is implied by Value.
type Field struct {
	Tag   string
	Value string
}

// String renders the field in wire form.
func (f Field) String() string {
	return fmt.Sprintf("%s%02d%s", f.Tag, len(f.Value), f.Value)
}

// Parse tokenizes s into its top-level fields, preserving order.
func Parse(s string) ([]Field, error) {
	if err := checkASCII(s); err != nil {
		return nil, err
	}

	var fields []Field
	for pos := 0; pos < len(s); {
		if pos+4 > len(s) {
			return nil, fmt.Errorf("%w: header at offset %d", ErrTruncated, pos)
		}

		tag := s[pos : pos+2]
		if !isDigits(tag) {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidTag, tag, pos)
		}

		rawLen := s[pos+2 : pos+4]
		if !isDigits(rawLen) {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidLength, rawLen, pos+2)
		}
		n, _ := strconv.Atoi(rawLen)

		start := pos + 4
		if start+n > len(s) {
			return nil, fmt.Errorf("%w: tag %s wants %d bytes at offset %d", ErrTruncated, tag, n, start)
		}

		fields = append(fields, Field{Tag: tag, Value: s[start : start+n]})
		pos = start + n
	}

	return fields, nil
}

// ParseNested tokenizes the value of a template tag (26-51, 62, 64).
func ParseNested(value string) ([]Field, error) {
	return Parse(value)
}

// IsTemplateTag reports whether the tag carries nested TLV data.
func IsTemplateTag(tag string) bool {
	n, err := strconv.Atoi(tag)
	if err != nil {
		return false
	}
	return (n >= 26 && n <= 51) || n == 62 || n == 64
}

// Encode serializes fields back to wire form.
func Encode(fields []Field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		if len(f.Tag) != 2 || !isDigits(f.Tag) {
			return "", fmt.Errorf("%w: %q", ErrInvalidTag, f.Tag)
		}
		if len(f.Value) > maxValueLength {
			return "", fmt.Errorf("%w: tag %s has %d", ErrValueTooLong, f.Tag, len(f.Value))
		}
		b.WriteString(f.String())
	}
	return b.String(), nil
}

// Lookup returns the value of the first field with the given tag.
func Lookup(fields []Field, tag string) (string, bool) {
	if i := indexOf(fields, tag); i >= 0 {
		return fields[i].Value, true
	}
	return "", false
}

func indexOf(fields []Field, tag string) int {
	for i, f := range fields {
		if f.Tag == tag {
			return i
		}
	}
	return -1
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func checkASCII(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return fmt.Errorf("%w: byte 0x%02X at offset %d", ErrNonASCII, s[i], i)
		}
	}
	return nil
}
