// Package cardnum generates, validates, encrypts, and masks 16-digit
// card numbers.
package cardnum

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	// Length is the number of digits in a card number.
	Length = 16

	// MaskedPlaceholder is returned by Mask when the input is too short
	// to reveal a last-four suffix.
	MaskedPlaceholder = "****"
)

// Generate produces a 16-digit card number: 15 uniformly random digits
// followed by the Luhn check digit computed over them.
func Generate() (string, error) {
	raw := make([]byte, Length-1)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate random digits: %w", err)
	}

	var b strings.Builder
	for _, v := range raw {
		b.WriteByte(v%10 + '0')
	}
	digits := b.String()

	return digits + string(rune(luhnCheckDigit(digits)+'0')), nil
}

// Validate reports whether number is exactly 16 decimal digits with a
// valid Luhn checksum.
func Validate(number string) bool {
	if len(number) != Length {
		return false
	}

	sum := 0
	double := false

	// Process from right to left, doubling every second digit.
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}

	return sum%10 == 0
}

// Mask hides all but the last four digits of a card number for display.
// Inputs shorter than four digits yield a fixed placeholder.
func Mask(number string) string {
	if len(number) < 4 {
		return MaskedPlaceholder
	}
	return "**** **** **** " + number[len(number)-4:]
}

// luhnCheckDigit computes the check digit that makes digits+check
// Luhn-valid. The rightmost digit of the input is doubled because it
// ends up second-to-last in the final number.
func luhnCheckDigit(digits string) int {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		n := int(digits[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return (10 - sum%10) % 10
}
