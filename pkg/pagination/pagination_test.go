package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	for _, counterparty := range []string{"", "S001", "ACME:EU"} {
		encoded := EncodeCursor(Cursor{ID: 42, Counterparty: counterparty})
		cursor, err := ParseCursor(encoded)
		require.NoError(t, err)
		require.NotNil(t, cursor)
		assert.Equal(t, int64(42), cursor.ID)
		assert.Equal(t, counterparty, cursor.Counterparty)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	cursor, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, cursor)

	bad := []string{
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte("created:1")),
		base64.RawURLEncoding.EncodeToString([]byte("doc:-4:S001")),
		base64.RawURLEncoding.EncodeToString([]byte("doc:7")),
		base64.RawURLEncoding.EncodeToString([]byte("id:7")),
	}
	for _, value := range bad {
		_, err := ParseCursor(value)
		assert.Error(t, err, value)
	}
}

func TestParseCursorForCounterparty(t *testing.T) {
	encoded := EncodeCursor(Cursor{ID: 9, Counterparty: "S001"})

	cursor, err := ParseCursorFor(encoded, "S001")
	require.NoError(t, err)
	assert.Equal(t, int64(9), cursor.ID)

	_, err = ParseCursorFor(encoded, "S002")
	require.Error(t, err)
	_, err = ParseCursorFor(encoded, "")
	require.Error(t, err)

	cursor, err = ParseCursorFor("", "S002")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}
