package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitsScale(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12", true},
		{"12.3", true},
		{"12.34", true},
		{"12.3400", true},
		{"12.345", false},
		{"-0.001", false},
		{"1e20", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FitsScale(MustMoney(tt.in), 2))
		})
	}
}
