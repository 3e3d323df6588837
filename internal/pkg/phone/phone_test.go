package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"US number", "+11234567890", true},
		{"max length 15 digits", "+123456789012345", true},
		{"min length 10 digits", "+1234567890", true},
		{"missing plus", "11234567890", false},
		{"too short", "+123456789", false},
		{"too long", "+1234567890123456", false},
		{"letters", "+1123456789a", false},
		{"dashes", "+1-123-456-7890", false},
		{"spaces", "+1 123 456 7890", false},
		{"empty", "", false},
		{"plus only", "+", false},
		{"double plus", "++1234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input))
		})
	}
}
