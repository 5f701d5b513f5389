package dbx

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatTime_SortsAsText(t *testing.T) {
	a := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)
	require.Less(t, FormatTime(a), FormatTime(b))

	back, err := ParseTime(FormatTime(b))
	require.NoError(t, err)
	require.True(t, back.Equal(b))

	local := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	require.Equal(t, "2026-05-01T10:00:00.000000000Z", FormatTime(local))

	_, err = ParseTime("yesterday")
	require.Error(t, err)
}

func TestNullableHelpers(t *testing.T) {
	require.False(t, NullString(nil).Valid)
	s := "x"
	require.Equal(t, sql.NullString{String: "x", Valid: true}, NullString(&s))
	require.Nil(t, StringPtr(sql.NullString{}))
	require.Equal(t, "x", *StringPtr(NullString(&s)))

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := TimePtr(NullTime(&now))
	require.NoError(t, err)
	require.True(t, got.Equal(now))

	got, err = TimePtr(NullTime(nil))
	require.NoError(t, err)
	require.Nil(t, got)
}
