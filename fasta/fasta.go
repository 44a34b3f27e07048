package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/TuftsBCB/seq"
)

// String returns s in FASTA format, with the sequence wrapped at the number
// of columns given.
//
// If cols is <= 0, then no wrapping is done.
func String(s seq.Sequence, cols int) string {
	residues := string(s.Residues)
	if cols <= 0 || len(residues) == 0 {
		return fmt.Sprintf(">%s\n%s", s.Name, residues)
	}

	wrapped := make([]string, 1+((len(residues)-1)/cols))
	for i := range wrapped {
		start := cols * i
		end := start + cols
		if end > len(residues) {
			end = len(residues)
		}
		wrapped[i] = residues[start:end]
	}
	return fmt.Sprintf(">%s\n%s", s.Name, strings.Join(wrapped, "\n"))
}

// A Writer writes sequences to a FASTA encoded file.
//
// The 'Columns' corresponds to the number of columns at which a sequence is
// wrapped. If it's <= 0, then no wrapping will be used.
//
// The header text is never wrapped.
type Writer struct {
	// The number of columns to wrap a sequence at. By default, this
	// is set to 60. A value <= 0 will result in no wrapping.
	Columns int
	buf     *bufio.Writer
}

// NewWriter createa a new FASTA writer that can write sequences to
// an io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Columns: 60,
		buf:     bufio.NewWriter(w),
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Write writes a single sequence to the underlying io.Writer.
//
// An error is returned if the name of the sequence has a line break, since
// the header would spill into the sequence.
//
// You may need to call Flush in order for the changes to be written.
func (w *Writer) Write(s seq.Sequence) error {
	if strings.ContainsAny(s.Name, "\r\n") {
		return fmt.Errorf("The name of sequence '%s' contains a line break.",
			s.Name)
	}
	_, err := w.buf.WriteString(String(s, w.Columns) + "\n")
	return err
}

// WriteAll writes a slice of sequences to the underyling io.Writer, and
// calls Flush.
func (w *Writer) WriteAll(seqs []seq.Sequence) error {
	for _, s := range seqs {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}
