package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"1abc", 1, true},
		{"1.0", 1, true},
		{" 7", 7, true},
		{"+3", 3, true},
		{"-2", -2, true},
		{"007", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{".5", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
