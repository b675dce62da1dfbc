package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewCipher("test-secret")
	require.NoError(t, err)

	for _, plaintext := range []string{"sk-proj-abc123", "", "密钥 with unicode ✓"} {
		sealed, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		got, err := c.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	c, err := NewCipher("test-secret")
	require.NoError(t, err)

	a, err := c.Encrypt("same input")
	require.NoError(t, err)
	b, err := c.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "a fresh nonce per call must vary the ciphertext")
}

func TestDecryptFailuresAreDistinguishable(t *testing.T) {
	c, err := NewCipher("test-secret")
	require.NoError(t, err)

	for name, input := range map[string]string{
		"not base64":     "%%%not-base64%%%",
		"too short":      "YWJj",
		"tampered bytes": func() string { s, _ := c.Encrypt("secret"); return s[:len(s)-4] + "AAA=" }(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt(input)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	a, err := NewCipher("secret-one")
	require.NoError(t, err)
	b, err := NewCipher("secret-two")
	require.NoError(t, err)

	sealed, err := a.Encrypt("api-key")
	require.NoError(t, err)

	_, err = b.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestNewCipherRejectsEmptySecret(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}
