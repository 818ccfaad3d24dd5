package bl4

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacadeCipherRoundTrip(t *testing.T) {
	plain := []byte("save document contents")
	cipherBytes := Encrypt(plain, 42)
	got, err := Decrypt(cipherBytes, 42, WithIntegrityCheck(func(b []byte) bool {
		return string(b) == string(plain)
	}))
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestFacadeCipherErrorKind(t *testing.T) {
	_, err := Decrypt([]byte("junk"), 1, WithIntegrityCheck(func([]byte) bool { return false }))
	require.Error(t, err)

	var tagged *Error
	require.True(t, errors.As(err, &tagged))
	assert.Equal(t, KindInvalidKey, tagged.Kind)
}

func TestFacadeSerialRoundTrip(t *testing.T) {
	item := &DecodedItem{
		Format:       FormatVarIntFirst,
		WeaponCode:   12,
		Manufacturer: "Jakobs",
		WeaponType:   "Pistol",
		Level:        50,
		CategoryID:   2,
		RarityTier:   2,
		Parts:        []Token{{Value: 1}},
	}

	text, err := EncodeItem(item)
	require.NoError(t, err)

	got, err := DecodeItem(text)
	require.NoError(t, err)
	assert.Equal(t, item.Level, got.Level)
	assert.Equal(t, item.Manufacturer, got.Manufacturer)

	result := Validate(got)
	assert.Equal(t, Legal, result.Overall)
}
