package cardnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_ProducesLuhnValidNumbers(t *testing.T) {
	for i := 0; i < 200; i++ {
		number, err := Generate()
		assert.NoError(t, err)
		assert.Len(t, number, Length)
		assert.True(t, Validate(number), "generated number %q failed Luhn validation", number)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"known valid visa test number", "4111111111111111", true},
		{"check digit off by one", "4111111111111112", false},
		{"too short", "411111111111111", false},
		{"too long", "41111111111111111", false},
		{"non-digit character", "411111111111111a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.number))
		})
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   string
	}{
		{"full card number", "4111111111111111", "**** **** **** 1111"},
		{"different last four", "5500005555555559", "**** **** **** 5559"},
		{"exactly four digits", "1234", "**** **** **** 1234"},
		{"three digits", "123", MaskedPlaceholder},
		{"empty", "", MaskedPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mask(tt.number))
		})
	}
}
