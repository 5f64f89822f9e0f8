package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuzzTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    BuzzTime
		expectError bool
	}{
		{name: "morning", input: "09:05", expected: BuzzTime{Hour: 9, Minute: 5}},
		{name: "midnight", input: "00:00", expected: BuzzTime{}},
		{name: "last minute", input: "23:59", expected: BuzzTime{Hour: 23, Minute: 59}},
		{name: "not zero padded", input: "9:05", expectError: true},
		{name: "hour out of range", input: "24:00", expectError: true},
		{name: "minute out of range", input: "12:60", expectError: true},
		{name: "seconds included", input: "12:00:00", expectError: true},
		{name: "empty", input: "", expectError: true},
		{name: "garbage", input: "ab:cd", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBuzzTime(tt.input)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestNewBuzzTime(t *testing.T) {
	_, err := NewBuzzTime(24, 0)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = NewBuzzTime(0, -1)
	assert.ErrorIs(t, err, ErrInvalidTime)

	b, err := NewBuzzTime(7, 30)
	require.NoError(t, err)
	assert.Equal(t, 450, b.Minutes())
}

func TestSortBuzzTimes(t *testing.T) {
	in := []BuzzTime{{20, 0}, {8, 0}, {20, 0}, {0, 15}}
	out := SortBuzzTimes(in)

	assert.Equal(t, []BuzzTime{{0, 15}, {8, 0}, {20, 0}}, out)
	// input is left untouched
	assert.Equal(t, BuzzTime{20, 0}, in[0])
}

func TestBuzzTimeJSON(t *testing.T) {
	raw, err := json.Marshal([]BuzzTime{{8, 0}, {20, 30}})
	require.NoError(t, err)
	assert.JSONEq(t, `["08:00","20:30"]`, string(raw))

	var decoded []BuzzTime
	require.NoError(t, json.Unmarshal([]byte(`["06:45"]`), &decoded))
	assert.Equal(t, []BuzzTime{{6, 45}}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`["6:45"]`), &decoded))
}
