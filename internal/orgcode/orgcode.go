// Package orgcode derives the five digit organization code from a CNPJ.
package orgcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// TaxIDLength is the number of digits in a CNPJ.
	TaxIDLength = 14

	// CodeLength is the width of an organization code.
	CodeLength = 5

	maxCode = 99999
)

var (
	ErrInvalidInput       = errors.New("tax id must contain exactly 14 digits")
	ErrCodeSpaceExhausted = errors.New("no free organization code at or above seed")
)

// Allocate returns the first free code at or above the numeric value of the
// first five digits of taxID. existing holds every code already in use.
//
// taxID must already be stripped of punctuation, see Digits.
func Allocate(taxID string, existing map[string]struct{}) (string, error) {
	if len(taxID) != TaxIDLength || !isDigits(taxID) {
		return "", fmt.Errorf("%w: got %q", ErrInvalidInput, taxID)
	}

	seed, err := strconv.Atoi(taxID[:CodeLength])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for candidate := seed; candidate <= maxCode; candidate++ {
		code := Pad5(candidate)
		if _, taken := existing[code]; !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: seed %s", ErrCodeSpaceExhausted, Pad5(seed))
}

// Pad5 formats n in base 10 left padded with zeros to five characters.
func Pad5(n int) string {
	return fmt.Sprintf("%0*d", CodeLength, n)
}

// Digits strips everything but ASCII digits, so "12.345.678/0001-90" becomes
// "12345678000190".
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Valid reports whether code is a five digit organization code.
func Valid(code string) bool {
	return len(code) == CodeLength && isDigits(code)
}

// Set builds the lookup set Allocate expects, skipping empty codes.
func Set(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c == "" {
			continue
		}
		set[c] = struct{}{}
	}
	return set
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
