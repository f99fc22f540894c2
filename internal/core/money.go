// Package core provides the khata domain model.
//
// This file contains money parsing and display helpers. Amounts are kept
// in paise (cents) to avoid floating-point drift; rupee strings are only
// produced at the display edge.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a positive decimal string to cents with
// half-up rounding on the third decimal place.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Returns an
// error for invalid formats, signed values, or zero amounts; the caller
// applies the sign according to the entry type.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// Neg returns the amount with the sign flipped.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Rupees returns the rupee value as a float64 for display purposes only.
func (m Money) Rupees() float64 {
	return float64(m.Cents) / 100.0
}

// FormatINR renders the magnitude in Indian rupee format: the lakh/crore
// digit grouping (₹1,20,744.14), paise shown only when nonzero.
func FormatINR(m Money) string {
	cents := m.Cents
	if cents < 0 {
		cents = -cents
	}
	rupees := cents / 100
	paise := cents % 100

	s := groupIndian(strconv.FormatInt(rupees, 10))
	if paise != 0 {
		s += fmt.Sprintf(".%02d", paise)
	}
	return "₹" + s
}

// groupIndian inserts commas in en-IN style: the last three digits form one
// group, every group before that has two digits.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := digits[:n-3]
	for len(head) > 2 {
		cut := len(head) % 2
		if cut == 0 {
			cut = 2
		}
		b.WriteString(head[:cut])
		b.WriteByte(',')
		head = head[cut:]
	}
	b.WriteString(head)
	b.WriteByte(',')
	b.WriteString(digits[n-3:])
	return b.String()
}
