package files

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
)

// Accepted bhavcopy date forms. A single digit day or month needs a
// leading zero.
var bhavDateLayouts = []string{"020106", "02/01/06"}

// ParseBhavDate parses a date given as ddmmyy or dd/mm/yy.
func ParseBhavDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range bhavDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewAppValidationError(fmt.Sprintf("date %q is improper or not formatted as ddmmyy or dd/mm/yy", s))
}

// DateFromFileName derives the bhavcopy date from the last six characters
// of a file name's stem, e.g. EQ_ISINCODE_150126.zip is 15 Jan 2026.
func DateFromFileName(name string) (time.Time, error) {
	base := path.Base(name)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if len(stem) < 6 {
		return time.Time{}, errors.NewAppValidationError(fmt.Sprintf("cannot derive a date from file name %q", base))
	}
	t, err := time.Parse("020106", stem[len(stem)-6:])
	if err != nil {
		return time.Time{}, errors.NewAppValidationError(fmt.Sprintf("cannot derive a date from file name %q", base))
	}
	return t, nil
}

// DirStamp is the ddmmyy form used for per-date download directories.
func DirStamp(date time.Time) string {
	return date.Format("020106")
}

// ExpandURLTemplate substitutes date placeholders in a source URL template.
// Supported placeholders: {ddmmyy}, {dd}, {mm}, {yy}, {yyyy}, {MON}.
func ExpandURLTemplate(tmpl string, date time.Time) string {
	return strings.NewReplacer(
		"{ddmmyy}", date.Format("020106"),
		"{dd}", date.Format("02"),
		"{mm}", date.Format("01"),
		"{yyyy}", date.Format("2006"),
		"{yy}", date.Format("06"),
		"{MON}", strings.ToUpper(date.Format("Jan")),
	).Replace(tmpl)
}
