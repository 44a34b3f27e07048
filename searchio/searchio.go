/*
Package searchio opens search reports and hands out the query results in them
one at a time.

A report is identified by a format name. Both 'hhsuite2-text' and
'hhsuite3-text' name the hhr reports written by hhsearch and hhblits, which
are read by package hhr.

Results are lazy and forward-only: each call to Next reads just enough of
the report for one query result. To read a report again, open it again.
After an error, Next keeps returning that error; a report is never
resynchronized past a broken query result.
*/
package searchio

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/TuftsBCB/searchio/hhr"
)

// ErrUnknownFormat is returned when a format name isn't one of Formats().
var ErrUnknownFormat = errors.New("unknown report format")

var formats = map[string]bool{
	"hhsuite2-text": true,
	"hhsuite3-text": true,
}

// Formats returns the names of the supported report formats, sorted.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// An Option changes how a report is read.
type Option func(*hhr.Reader)

// TrustCoordinates turns off checking alignment coordinates against the
// hit table. See hhr.Reader.
func TrustCoordinates(trust bool) Option {
	return func(r *hhr.Reader) {
		r.TrustCoordinates = trust
	}
}

// WithLogger sets the logger that receives debug messages from the reader.
func WithLogger(l *zap.Logger) Option {
	return func(r *hhr.Reader) {
		if l != nil {
			r.Logger = l
		}
	}
}

// Results is a lazy sequence of the query results in one report.
type Results struct {
	Format string

	rdr    *hhr.Reader
	closer io.Closer
	count  int
}

// Parse returns the query results of the report read from r.
// Closing the Results does not close r.
func Parse(r io.Reader, format string, opts ...Option) (*Results, error) {
	if !formats[format] {
		return nil, fmt.Errorf("%w: '%s' (known formats: %v)",
			ErrUnknownFormat, format, Formats())
	}
	rdr := hhr.NewReader(r)
	for _, opt := range opts {
		opt(rdr)
	}
	return &Results{Format: format, rdr: rdr}, nil
}

// Open returns the query results of the report in the file 'fileName'.
//
// If the file name ends with ".gz", gzip decompression will be used.
func Open(fileName, format string, opts ...Option) (*Results, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}

	var reader io.Reader = f
	closers := multiCloser{f}
	if filepath.Ext(fileName) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("Error opening '%s': %w", fileName, err)
		}
		reader = gz
		closers = multiCloser{gz, f}
	}

	res, err := Parse(reader, format, opts...)
	if err != nil {
		closers.Close()
		return nil, err
	}
	res.closer = closers
	return res, nil
}

// ReadAll is a convenience function for reading every query result in the
// file 'fileName'.
func ReadAll(fileName, format string, opts ...Option) ([]*hhr.QueryResult, error) {
	res, err := Open(fileName, format, opts...)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	all := make([]*hhr.QueryResult, 0, 1)
	for {
		qr, err := res.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Error reading '%s': %w", fileName, err)
		}
		all = append(all, qr)
	}
	return all, nil
}

// Next returns the next query result, or io.EOF if there are no more.
func (res *Results) Next() (*hhr.QueryResult, error) {
	qr, err := res.rdr.Read()
	if err != nil {
		return nil, err
	}
	res.count++
	return qr, nil
}

// Count returns the number of query results returned by Next so far.
func (res *Results) Count() int {
	return res.count
}

// Close releases the file opened by Open. It is a no-op for Results
// returned by Parse.
func (res *Results) Close() error {
	if res.closer == nil {
		return nil
	}
	err := res.closer.Close()
	res.closer = nil
	return err
}

// multiCloser closes multiple io.Closers, in order, when Close() is called.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var err error
	for _, c := range m {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
