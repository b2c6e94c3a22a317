package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumeric(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{120.0, 120, true},
		{"120", 120, true},
		{" 3.5 ", 3.5, true},
		{0, 0, true},
		{int64(7), 7, true},
		{"Gold", 0, false},
		{nil, 0, false},
		{"", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := Numeric(tt.in)
		assert.Equal(t, tt.ok, ok, "Numeric(%#v)", tt.in)
		assert.Equal(t, tt.want, got, "Numeric(%#v)", tt.in)
	}
}

func TestScoreOf(t *testing.T) {
	assert.Equal(t, 120.0, ScoreOf(120.0))
	assert.Equal(t, 120.0, ScoreOf("120"))
	assert.Equal(t, 0.0, ScoreOf(nil))
	assert.Equal(t, 0.0, ScoreOf("Gold"))
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same numbers", 100.0, 100.0, true},
		{"number vs numeric string", 120.0, "120", true},
		{"float formatting", "3.50", 3.5, true},
		{"different numbers", 120.0, 100.0, false},
		{"numeric vs absent zero", 0.0, nil, true},
		{"numeric vs absent nonzero", 5.0, nil, false},
		{"absent vs numeric zero", "", 0.0, true},
		{"same strings", "Gold", "Gold", true},
		{"different strings", "Gold", "Silver", false},
		{"both absent", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "120", FormatValue(120.0))
	assert.Equal(t, "3.5", FormatValue(3.5))
	assert.Equal(t, "Gold", FormatValue("Gold"))
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "42", FormatValue(42))
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "short", TruncateAddress("short"))
	assert.Equal(t,
		"deadbeef...beef",
		TruncateAddress("deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
}
