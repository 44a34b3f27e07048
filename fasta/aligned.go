package fasta

import (
	"fmt"
	"io"

	"github.com/TuftsBCB/seq"
)

// An AlignedWriter writes sequences to an aligned FASTA encoded file.
//
// See the exported fields of Writer for options that can be set.
type AlignedWriter struct {
	*Writer
	seqLen int
}

// NewAlignedWriter createa a new aligned FASTA writer that can write
// sequences to an io.Writer.
func NewAlignedWriter(w io.Writer) *AlignedWriter {
	return &AlignedWriter{
		Writer: NewWriter(w),
		seqLen: -1,
	}
}

// Write writes a single aligned sequence to the underlying io.Writer.
//
// An error is returned if the length of the sequence is not the same length
// as other sequences that have already been written.
//
// You may need to call Flush in order for the changes to be written.
func (w *AlignedWriter) Write(s seq.Sequence) error {
	if w.seqLen == -1 {
		w.seqLen = s.Len()
	} else if w.seqLen != s.Len() {
		return fmt.Errorf("Sequence '%s' has length %d, but other sequences "+
			"have length %d.", s.Name, s.Len(), w.seqLen)
	}
	return w.Writer.Write(s)
}

// WriteAll writes a slice of aligned sequences to the underyling io.Writer,
// and calls Flush.
func (w *AlignedWriter) WriteAll(seqs []seq.Sequence) error {
	for _, s := range seqs {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Reset forgets the length of the sequences written so far, so that the
// next sequence starts a new alignment. Buffered data is kept.
func (w *AlignedWriter) Reset() {
	w.seqLen = -1
}
