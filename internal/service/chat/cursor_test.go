package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCursor(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)

	got := ParseCursor("2024-03-01T12:00:00.500Z")
	require.NotNil(t, got)
	assert.Equal(t, want.UnixMilli(), got.UnixMilli())

	got = ParseCursor("1709294400500")
	require.NotNil(t, got)
	assert.Equal(t, want.UnixMilli(), got.UnixMilli())

	assert.Nil(t, ParseCursor(""))
	assert.Nil(t, ParseCursor("   "))
	assert.Nil(t, ParseCursor("not-a-date"))
}
