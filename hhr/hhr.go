package hhr

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/TuftsBCB/seq"
)

// Program identifies the family of tools that write HHR reports.
const Program = "HHSUITE"

// QueryResult is the result of searching a single query against a database.
type QueryResult struct {
	Program string

	// ID is the 'Query' header field. It may contain spaces.
	ID string

	// SeqLen is the 'Match_columns' header field.
	SeqLen int

	Meta Meta

	// Summary is the hit table, in report order. It may have more rows
	// than there are hits, since a report can list more hits than it
	// prints alignments for.
	Summary []Row

	// Hits has one entry for every alignment block, in report order.
	Hits []Hit
}

// Meta holds the header fields of a query result other than the query
// identifier and length.
type Meta struct {
	NumSeqs      string
	Neff         seq.Prob
	SearchedHMMs int
	Date         string
	Command      string

	// Other holds header fields with keys not listed above.
	Other map[string]string
}

// Hit is a single database entry matched against the query.
type Hit struct {
	// ID is unique within a query result. It is Name followed by '_N', where
	// N counts the hits with the same Name so far (starting at 1).
	ID string

	Name        string
	Num         int
	Description string
	IsIncluded  bool
	Prob        float64 // in [0, 1]
	EValue      float64
	Score       float64
	HSPs        []HSP
}

// HSP is a single contiguous alignment between the query and a hit.
//
// Coordinates are 1-based and inclusive. Hit and Query are the aligned
// sequences and have the same length, gaps included.
type HSP struct {
	IsIncluded     bool
	Prob           float64 // in [0, 1]
	EValue         float64
	Score          float64
	NumAlignedCols int
	Identity       float64 // in [0, 1]
	Similarity     float64
	SumProbs       float64
	TemplateNeff   float64

	HitStart, HitEnd, HitLen       int
	QueryStart, QueryEnd, QueryLen int

	Hit   seq.Sequence
	Query seq.Sequence

	// Annotations maps labels like 'Q ss_pred', 'T Consensus', 'Match' and
	// 'Confidence' to their column annotation of the alignment. Each value
	// has the length of the alignment.
	Annotations map[string]string
}

// Len returns the number of hits in the query result.
func (qr *QueryResult) Len() int {
	return len(qr.Hits)
}

// Hit returns the hit with the given identifier.
func (qr *QueryResult) Hit(id string) (Hit, bool) {
	for _, hit := range qr.Hits {
		if hit.ID == id {
			return hit, true
		}
	}
	return Hit{}, false
}

// Confidence returns the per column confidence of the alignment, or an empty
// string if the report doesn't have one.
func (hsp HSP) Confidence() string {
	return hsp.Annotations[AnnotationConfidence]
}

// Sequences returns the aligned query and hit sequences, in that order.
func (hsp HSP) Sequences() []seq.Sequence {
	return []seq.Sequence{hsp.Query, hsp.Hit}
}

// Reader reads query results from an HHR report. A report usually has one
// query result, but several reports may be concatenated.
type Reader struct {
	// When TrustCoordinates is true, the coordinates of an alignment are not
	// checked against the query length or the ranges in the hit table.
	// Coordinates are always checked against the residues of the alignment.
	TrustCoordinates bool

	// Logger receives debug messages about the structure of the report.
	// It is never nil.
	Logger *zap.Logger

	buf     *bufio.Reader
	line    int
	pending *string
	err     error
}

// NewReader creates a new Reader that reads query results from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		Logger: zap.NewNop(),
		buf:    bufio.NewReader(r),
	}
}

// Read is a convenience function for reading the first query result of a
// report.
func Read(r io.Reader) (*QueryResult, error) {
	return NewReader(r).Read()
}

// Read reads the next query result. When there are no more, io.EOF is
// returned.
//
// Any other error is fatal: the query result being read is discarded and
// every subsequent call returns the same error.
func (r *Reader) Read() (*QueryResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	qr, err := r.read()
	if err != nil {
		r.err = err
		return nil, err
	}
	return qr, nil
}

// ReadAll reads all remaining query results.
func (r *Reader) ReadAll() ([]*QueryResult, error) {
	all := make([]*QueryResult, 0, 1)
	for {
		qr, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		all = append(all, qr)
	}
	return all, nil
}

func (r *Reader) read() (*QueryResult, error) {
	p := newParser(r.TrustCoordinates, r.Logger)
	for {
		line, err := r.nextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		kind := classify(p.state, line)
		if _, ok := transition(p.state, kind); ok && kind == lineNewQuery {
			// The start of the next query result. Keep it for the next call.
			r.pending = &line
			break
		}
		if !p.started && kind == lineBlank {
			continue
		}
		if err := p.feed(kind, line, r.line); err != nil {
			return nil, atLine(err, r.line)
		}
	}
	if !p.started {
		return nil, io.EOF
	}
	return p.finish()
}

// nextLine returns the next line without its trailing whitespace. Leading
// whitespace is kept. A line held back by the previous query result is
// returned first.
func (r *Reader) nextLine() (string, error) {
	if r.pending != nil {
		line := *r.pending
		r.pending = nil
		return line, nil
	}

	line, err := r.buf.ReadBytes('\n')
	if err == io.EOF && len(line) == 0 {
		return "", io.EOF
	}
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("Error reading hhr after line %d: %w", r.line, err)
	}
	r.line++
	return trim(line), nil
}

func trim(bs []byte) string {
	return string(bytes.TrimRight(bs, " \t\r\n"))
}
