package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cryptoKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sealed, err := Encrypt([]byte("an oauth refresh token"), cryptoKey)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "oauth")

	plain, err := Decrypt(sealed, cryptoKey)
	require.NoError(t, err)
	assert.Equal(t, "an oauth refresh token", plain)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	a, err := Encrypt([]byte("same input"), cryptoKey)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same input"), cryptoKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "a fresh nonce per call")
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), cryptoKey)
	require.NoError(t, err)

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	_, err = Decrypt(sealed, otherKey)
	assert.Error(t, err)
}

func TestDecryptRejectsShortPayload(t *testing.T) {
	_, err := Decrypt("c2hvcnQ=", cryptoKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestDecryptRejectsBadKeySize(t *testing.T) {
	_, err := Encrypt([]byte("secret"), []byte("short key"))
	assert.Error(t, err)
}
