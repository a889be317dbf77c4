package mirror

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsString(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  C-1 ", "C-1"},
		{42.0, "42"},
		{json.Number("7"), "7"},
		{int64(9), "9"},
	} {
		got, err := AsString(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestAsFloatAndInt(t *testing.T) {
	f, err := AsFloat("1500.5")
	require.NoError(t, err)
	assert.Equal(t, 1500.5, f)

	f, err = AsFloat(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	_, err = AsFloat("abc")
	assert.Error(t, err)

	n, err := AsInt(12.9)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = DefaultInt(12)(nil)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = DefaultInt(12)(int32(6))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	s, _ := DefaultString("USDT")("")
	assert.Equal(t, "USDT", s)
}

func TestAsTime(t *testing.T) {
	want := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	for _, in := range []any{"2025-03-04", "2025-03-04T00:00:00Z", "2025-03-04 00:00:00", want, float64(want.UnixMilli())} {
		got, err := AsTime(in)
		require.NoError(t, err, "%v", in)
		require.NotNil(t, got.(*time.Time), "%v", in)
		assert.True(t, want.Equal(*got.(*time.Time)), "%v", in)
	}

	got, err := AsTime(nil)
	require.NoError(t, err)
	assert.Nil(t, got.(*time.Time))

	_, err = AsTime("yesterday")
	assert.Error(t, err)
}
