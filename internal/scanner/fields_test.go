package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsSplit(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want []string
	}{
		{"simple", "1,10,x", []string{"1", "10", "x"}},
		{"empty trailing", "3,", []string{"3", ""}},
		{"empty row", "", []string{""}},
		{"quotes not interpreted", `"a,b",c`, []string{`"a`, `b"`, "c"}},
		{"cr kept", "1,2\r", []string{"1", "2\r"}},
	}

	var f Fields
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.Split([]byte(tt.row))
			for i, want := range tt.want {
				assert.Equal(t, want, f.Get(i), "field %d", i)
			}
			assert.Equal(t, "", f.Get(len(tt.want)))
		})
	}
}

func TestFieldsGetOutOfRange(t *testing.T) {
	var f Fields
	f.Split([]byte("1,2"))

	assert.Equal(t, "1", f.Get(0))
	assert.Equal(t, "2", f.Get(1))
	assert.Equal(t, "", f.Get(2))
	assert.Equal(t, "", f.Get(-1))
}
