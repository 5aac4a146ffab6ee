package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"a@x.com", true},
		{"first.last@sub.example.co", true},
		{"user+tag@example.com", true},
		{"", false},
		{"bad", false},
		{"no-domain@", false},
		{"@no-local.com", false},
		{"no-dot@domain", false},
		{"two@@x.com", false},
		{"spaces in@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAddress(tt.value))
		})
	}
}
