package hhr

import (
	"sort"
	"strings"
)

// Row is a single entry of the summary hit table that precedes the
// alignments of a query result.
//
// The program writing the report cuts the combined name and description to a
// fixed width, so Description (and for long names, Name) is usually
// truncated. The description of the corresponding alignment block is not.
type Row struct {
	Num             int
	Name            string
	Description     string
	Prob            float64 // in [0, 1]
	EValue          float64
	PValue          float64
	Score           float64
	SSScore         float64
	NumAlignedCols  int
	QueryStart      int
	QueryEnd        int
	TemplateStart   int
	TemplateEnd     int
	NumTemplateCols int
}

type column int

const (
	colProb column = iota
	colEValue
	colPValue
	colScore
	colSS
	colCols
	colQuery
	colTemplate
)

// tableColumns are the columns a hit table header may name. Every column
// contributes one token to a row, except 'Template HMM' which is followed by
// the template length in parentheses.
var tableColumns = []struct {
	col      column
	label    string
	tokens   int
	required bool
}{
	{colProb, "Prob", 1, true},
	{colEValue, "E-value", 1, true},
	{colPValue, "P-value", 1, false},
	{colScore, "Score", 1, true},
	{colSS, "SS", 1, false},
	{colCols, "Cols", 1, false},
	{colQuery, "Query HMM", 1, true},
	{colTemplate, "Template HMM", 2, true},
}

// tableLayout describes the numeric columns of a hit table, in the order the
// table header lists them.
type tableLayout struct {
	columns []column
	tokens  []int
	ntokens int
}

// newTableLayout reads the ' No Hit   Prob E-value ...' header of a hit table.
func newTableLayout(header string) (*tableLayout, error) {
	type found struct {
		col    column
		tokens int
		at     int
	}
	all := make([]found, 0, len(tableColumns))
	for _, tc := range tableColumns {
		at := wordIndex(header, tc.label)
		if at < 0 {
			if tc.required {
				return nil, errorf(UnrecognizedLine,
					"The hit table header has no '%s' column.", tc.label)
			}
			continue
		}
		all = append(all, found{tc.col, tc.tokens, at})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })

	lay := &tableLayout{}
	for _, f := range all {
		lay.columns = append(lay.columns, f.col)
		lay.tokens = append(lay.tokens, f.tokens)
		lay.ntokens += f.tokens
	}
	return lay, nil
}

// parseRow reads a single row of the hit table.
//
// Only the hit name and description are free text, and the description may
// contain anything, including numbers and parentheses. So the numeric
// columns are anchored at the END of the row: the last ntokens tokens are
// the columns named in the header, the first token is the hit number and
// the text between them is taken verbatim as the name and description.
func (lay *tableLayout) parseRow(line string) (Row, error) {
	spans := tokenSpans(line)
	if len(spans) < lay.ntokens+2 {
		return Row{}, errorf(UnrecognizedLine,
			"Hit table row has %d fields, but at least %d are required.",
			len(spans), lay.ntokens+2)
	}

	var row Row
	var err error
	row.Num, err = readInt(spans[0].of(line), "hit number")
	if err != nil {
		return Row{}, err
	}

	tail := spans[len(spans)-lay.ntokens:]
	row.Name, row.Description = splitName(line[spans[0].end:tail[0].start])

	i := 0
	for c, col := range lay.columns {
		tok := tail[i].of(line)
		switch col {
		case colProb:
			row.Prob, err = readFloat(tok, "Prob")
			row.Prob /= 100.0
		case colEValue:
			row.EValue, err = readFloat(tok, "E-value")
		case colPValue:
			row.PValue, _, err = decodeFloat(tok)
		case colScore:
			row.Score, err = readFloat(tok, "Score")
		case colSS:
			row.SSScore, _, err = decodeFloat(tok)
		case colCols:
			row.NumAlignedCols, _, err = decodeInt(tok)
		case colQuery:
			row.QueryStart, row.QueryEnd, err = readRange(tok, "Query HMM")
		case colTemplate:
			row.TemplateStart, row.TemplateEnd, err = readRange(tok,
				"Template HMM")
			if err == nil {
				row.NumTemplateCols, err = readInt(tail[i+1].of(line),
					"template length")
			}
		}
		if err != nil {
			return Row{}, err
		}
		i += lay.tokens[c]
	}
	return row, nil
}

type span struct {
	start, end int
}

func (s span) of(line string) string {
	return line[s.start:s.end]
}

// tokenSpans returns the offsets of the tokens in a table row. Parentheses
// delimit tokens too, since the template length is sometimes glued to the
// template range, as in '1-171(171)'.
func tokenSpans(line string) []span {
	spans := make([]span, 0, 16)
	start := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t', '(', ')':
			if start >= 0 {
				spans = append(spans, span{start, i})
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(line)})
	}
	return spans
}

// wordIndex returns the offset of 'word' in s where it is delimited by
// whitespace or the ends of s, or -1.
func wordIndex(s, word string) int {
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], word)
		if i < 0 {
			return -1
		}
		i += off
		end := i + len(word)
		before := i == 0 || s[i-1] == ' ' || s[i-1] == '\t'
		after := end == len(s) || s[end] == ' ' || s[end] == '\t'
		if before && after {
			return i
		}
		off = i + 1
	}
	return -1
}

// splitName splits 'name description' text. The name never contains
// whitespace; the description is everything after it, untouched apart from
// surrounding whitespace.
func splitName(s string) (name, description string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
