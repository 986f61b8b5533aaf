// Package report renders probability tables and failure listings as
// fixed-width text.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// percent formats p as a percentage with two integer digits, e.g. "05.00%".
func percent(p float64, precision int) string {
	width := 2
	if precision > 0 {
		width += 1 + precision
	}
	return fmt.Sprintf("%0*.*f%%", width, precision, 100*p)
}

// center pads s with fill to width columns, the extra column going left.
// Width counts runes, so accented pool terms stay aligned.
func center(s string, width int, fill byte) string {
	total := width - utf8.RuneCountInString(s)
	if total <= 0 {
		return s
	}
	f := string(fill)
	return strings.Repeat(f, (total+1)/2) + s + strings.Repeat(f, total/2)
}

// lineWriter remembers the first write error so renderers can check once.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = io.WriteString(lw.w, s+"\n")
}
