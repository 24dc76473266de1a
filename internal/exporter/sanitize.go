package exporter

import (
	"strings"
)

// MaxSheetNameLength is the longest sheet name a workbook accepts, in runes.
const MaxSheetNameLength = 31

const forbiddenSheetChars = `:\/?*[]`

// SanitizeSheetName makes a client name usable as a worksheet name: it
// removes the characters : \ / ? * [ ], trims surrounding spaces and
// apostrophes, then truncates to MaxSheetNameLength runes.
func SanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenSheetChars, r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, " '")

	runes := []rune(cleaned)
	if len(runes) > MaxSheetNameLength {
		cleaned = strings.TrimRight(string(runes[:MaxSheetNameLength]), " '")
	}
	return cleaned
}

// sheetKey is the identity workbooks use when comparing sheet names.
func sheetKey(name string) string {
	return strings.ToLower(name)
}
