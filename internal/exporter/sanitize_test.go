package exporter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Alpha", "Alpha"},
		{"forbidden characters", `A:l\p/h?a*[1]`, "Alpha1"},
		{"surrounding spaces", "  Beta  ", "Beta"},
		{"surrounding apostrophes", "'Gamma'", "Gamma"},
		{"exactly 31", strings.Repeat("x", 31), strings.Repeat("x", 31)},
		{"truncated", strings.Repeat("y", 40), strings.Repeat("y", 31)},
		{"truncated by runes", strings.Repeat("é", 35), strings.Repeat("é", 31)},
		{"only forbidden", "[]:*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSheetName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxSheetNameLength)
		})
	}
}
