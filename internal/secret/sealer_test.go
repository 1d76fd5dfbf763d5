package secret

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = base64.URLEncoding.EncodeToString([]byte(strings.Repeat("k", KeySize)))

func TestSealOpen(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("client-secret"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "client-secret")

	out, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "client-secret", string(out))

	again, err := s.Seal([]byte("client-secret"))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")
}

func TestOpenTampered(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("value"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = s.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = s.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrOpen)
}

func TestOpenWithOtherKey(t *testing.T) {
	a, _ := NewSealer(testKey)
	b, _ := NewSealer(base64.URLEncoding.EncodeToString([]byte(strings.Repeat("z", KeySize))))

	sealed, err := a.Seal([]byte("value"))
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"padded", testKey, false},
		{"unpadded", strings.TrimRight(testKey, "="), false},
		{"too short", base64.URLEncoding.EncodeToString([]byte("short")), true},
		{"not base64", "!!!not-base64!!!", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}
