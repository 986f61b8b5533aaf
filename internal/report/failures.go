package report

import (
	"io"
	"strings"

	"github.com/cory-johannsen/risus/internal/game/probability"
)

const (
	failuresTitle   = " Failure Combinations "
	minFailureWidth = 28
)

// FailureWriter streams failing combinations as dotted lines:
//
//	1-3-5 ................. 00.463%
//
// Use Header, then Write per failure, then Close.
type FailureWriter struct {
	lw        *lineWriter
	precision int
	padLimit  int
	lineLen   int
}

// NewFailureWriter prepares a writer sized for sequences of up to maxLen faces.
//
// Precondition: precision >= 0.
func NewFailureWriter(w io.Writer, maxLen, precision int) *FailureWriter {
	seqWidth := max(2*maxLen-1, 1)
	lineLen := max(minFailureWidth, seqWidth+5+4+precision)
	return &FailureWriter{
		lw:        &lineWriter{w: w},
		precision: precision,
		padLimit:  lineLen - 4 - precision,
		lineLen:   lineLen,
	}
}

// Header writes the framed title.
func (fw *FailureWriter) Header() {
	rule := strings.Repeat("=", fw.lineLen)
	fw.lw.line("")
	fw.lw.line(rule)
	fw.lw.line(center(failuresTitle, fw.lineLen, '='))
	fw.lw.line(rule)
}

// Write emits one failure line. It has the shape of a ListFailures callback.
func (fw *FailureWriter) Write(f probability.Failure) {
	seq := f.String()
	if seq == "" {
		seq = "(empty)"
	}
	dots := fw.padLimit - len(seq)
	pad := strings.Repeat(" ", max(dots, 0))
	if dots > 2 {
		pad = " " + strings.Repeat(".", dots-2) + " "
	}
	fw.lw.line(seq + pad + percent(f.Probability, fw.precision))
}

// Close writes the closing rule and returns the first write error, if any.
func (fw *FailureWriter) Close() error {
	fw.lw.line(strings.Repeat("=", fw.lineLen))
	return fw.lw.err
}

// WriteFailures renders a complete failure listing.
func WriteFailures(w io.Writer, failures []probability.Failure, maxLen, precision int) error {
	fw := NewFailureWriter(w, maxLen, precision)
	fw.Header()
	for _, f := range failures {
		fw.Write(f)
	}
	return fw.Close()
}
