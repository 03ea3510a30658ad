package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{"-2.5", -2.5, true},
		{"+3", 3, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"1e400", math.Inf(1), true},
		{"-1e400", math.Inf(-1), true},
		{"1e-400", 0, true},
		{"inf", math.Inf(1), true},
		{"1_0", 0, false},
		{"0x1p4", 0, false},
		{"-0X10p0", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{" 1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
	assert.True(t, math.IsNaN(parseNumber("0x1p4")))
}
