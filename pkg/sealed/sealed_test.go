package sealed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBox_RoundTrip(t *testing.T) {
	box, err := New("super-secret")
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "topic", plaintext: "My order never arrived"},
		{name: "reason", plaintext: "Resolved, thanks!"},
		{name: "unicode", plaintext: "🙌 ça marche"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := box.Encrypt(tt.plaintext)
			require.NoError(t, err)
			require.NotEqual(t, tt.plaintext, ciphertext)

			got, err := box.Decrypt(ciphertext)
			require.NoError(t, err)
			require.Equal(t, tt.plaintext, got)
		})
	}
}

func TestBox_NonceIsRandom(t *testing.T) {
	box, err := New("super-secret")
	require.NoError(t, err)

	a, err := box.Encrypt("same")
	require.NoError(t, err)
	b, err := box.Encrypt("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestBox_WrongKey(t *testing.T) {
	a, err := New("key-a")
	require.NoError(t, err)
	b, err := New("key-b")
	require.NoError(t, err)

	ciphertext, err := a.Encrypt("hello")
	require.NoError(t, err)

	_, err = b.Decrypt(ciphertext)
	require.Error(t, err)
}

func TestBox_Invalid(t *testing.T) {
	_, err := New("")
	require.ErrorIs(t, err, ErrNoKey)

	box, err := New("key")
	require.NoError(t, err)

	_, err = box.Decrypt("not base64!")
	require.Error(t, err)

	_, err = box.Decrypt("AAAA")
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}
