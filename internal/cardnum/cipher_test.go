package cardnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testKey = "0123456789abcdef" // 16 bytes, AES-128

func TestNewCipher_KeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"missing key", "", true},
		{"short key", "too-short", true},
		{"aes-128 key", testKey, false},
		{"aes-192 key", "0123456789abcdef01234567", false},
		{"aes-256 key", "0123456789abcdef0123456789abcdef", false},
		{"17 bytes", "0123456789abcdefX", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCipher(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, c)
			}
		})
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	assert.NoError(t, err)

	for i := 0; i < 50; i++ {
		number, err := Generate()
		assert.NoError(t, err)

		encrypted, err := c.Encrypt(number)
		assert.NoError(t, err)
		assert.NotEqual(t, number, encrypted)
		assert.NotContains(t, encrypted, number)

		decrypted, err := c.Decrypt(encrypted)
		assert.NoError(t, err)
		assert.Equal(t, number, decrypted)
	}
}

func TestCipher_EncryptIsRandomized(t *testing.T) {
	c, err := NewCipher(testKey)
	assert.NoError(t, err)

	first, err := c.Encrypt("4111111111111111")
	assert.NoError(t, err)
	second, err := c.Encrypt("4111111111111111")
	assert.NoError(t, err)

	// Fresh IV per call: identical plaintexts must not produce
	// identical ciphertexts.
	assert.NotEqual(t, first, second)
}

func TestCipher_DecryptRejectsGarbage(t *testing.T) {
	c, err := NewCipher(testKey)
	assert.NoError(t, err)

	_, err = c.Decrypt("not hex")
	assert.Error(t, err)

	_, err = c.Decrypt("abcd")
	assert.Error(t, err)

	// valid hex, but too short to contain an IV and a block
	_, err = c.Decrypt("00112233445566778899aabbccddeeff")
	assert.Error(t, err)
}
