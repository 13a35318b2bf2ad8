package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"4", "4"},
		{"424", "424"},
		{"4242", "4242"},
		{"42424", "4242 4"},
		{"4242424242424242", "4242 4242 4242 4242"},
		{"4242 4242 4242 4242 999", "4242 4242 4242 4242"},
		{"4242-42ab42", "4242 4242"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCardNumber(tt.in))
		})
	}
}

func TestFormatExpiryDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"1", "1"},
		{"12", "12/"},
		{"123", "12/3"},
		{"1225", "12/25"},
		{"12/25", "12/25"},
		{"122599", "12/25"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatExpiryDate(tt.in))
		})
	}
}
