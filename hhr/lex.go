package hhr

import (
	"fmt"
	"regexp"
	"strings"
)

// parseState is where the reader is in a single query result. A report is
// read top to bottom exactly once: header, hit table, the blank gap after the
// table, the alignment blocks and optionally the 'Done!' marker.
type parseState int

const (
	stateHeader parseState = iota
	stateTable
	stateHits
	stateBlock
	stateDone
)

// lineKind is the classification of a single line of a report.
type lineKind int

const (
	lineUnknown lineKind = iota
	lineBlank
	lineHeaderField
	lineTableHeader
	lineTableRow
	lineBlockStart
	lineBlockName
	lineBlockScores
	lineQuery
	lineTemplate
	lineConfidence
	lineMatch
	lineNewQuery
	lineEnd
)

const endMarker = "Done!"

var (
	reBlockStart  = regexp.MustCompile(`^No\s+([0-9]+)$`)
	reHeaderField = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*(?:\s|$)`)
	reTableRow    = regexp.MustCompile(`^\s*[0-9]+\s+\S`)
	reMatch       = regexp.MustCompile(`^\s+[|+.=~ -]+$`)
)

// transitions lists, for every state, the kinds of line that may appear in
// it and the state that follows. A kind missing from a state's map is an
// unrecognized line. A lineNewQuery that leads back to stateHeader ends the
// current query result; the Reader keeps that line for the next one.
var transitions = map[parseState]map[lineKind]parseState{
	stateHeader: {
		lineBlank:       stateHeader,
		lineHeaderField: stateHeader,
		lineTableHeader: stateTable,
		lineEnd:         stateDone,
	},
	stateTable: {
		lineTableRow:   stateTable,
		lineBlank:      stateHits,
		lineBlockStart: stateBlock,
		lineEnd:        stateDone,
		lineNewQuery:   stateHeader,
	},
	stateHits: {
		lineBlank:      stateHits,
		lineBlockStart: stateBlock,
		lineEnd:        stateDone,
		lineNewQuery:   stateHeader,
	},
	stateBlock: {
		lineBlank:       stateBlock,
		lineBlockStart:  stateBlock,
		lineBlockName:   stateBlock,
		lineBlockScores: stateBlock,
		lineQuery:       stateBlock,
		lineTemplate:    stateBlock,
		lineConfidence:  stateBlock,
		lineMatch:       stateBlock,
		lineEnd:         stateDone,
		lineNewQuery:    stateHeader,
	},
	stateDone: {
		lineBlank:    stateDone,
		lineNewQuery: stateHeader,
	},
}

// transition returns the state following a line of the given kind. ok is
// false if that kind of line cannot appear in state s.
func transition(s parseState, k lineKind) (next parseState, ok bool) {
	next, ok = transitions[s][k]
	return
}

// classify determines what kind of line 'line' is, given the state of the
// reader. 'line' must have its trailing whitespace removed but NOT its
// leading whitespace, which distinguishes match annotation lines in
// alignment blocks.
func classify(s parseState, line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case len(trimmed) == 0:
		return lineBlank
	case trimmed == endMarker:
		return lineEnd
	case isQueryField(line):
		if s == stateHeader {
			return lineHeaderField
		}
		return lineNewQuery
	}

	switch s {
	case stateHeader:
		if strings.HasPrefix(trimmed, "No Hit") {
			return lineTableHeader
		}
		if reHeaderField.MatchString(line) {
			return lineHeaderField
		}
	case stateTable:
		if reTableRow.MatchString(line) {
			return lineTableRow
		}
		if reBlockStart.MatchString(line) {
			return lineBlockStart
		}
	case stateHits:
		if reBlockStart.MatchString(line) {
			return lineBlockStart
		}
	case stateBlock:
		switch {
		case reBlockStart.MatchString(line):
			return lineBlockStart
		case line[0] == '>':
			return lineBlockName
		case strings.HasPrefix(line, "Probab="):
			return lineBlockScores
		case strings.HasPrefix(line, "Q "):
			return lineQuery
		case strings.HasPrefix(line, "T "):
			return lineTemplate
		case strings.HasPrefix(line, "Confidence"):
			return lineConfidence
		case reMatch.MatchString(line):
			return lineMatch
		}
	}
	return lineUnknown
}

// blockNumber returns the running index of a 'No N' line.
func blockNumber(line string) (int, error) {
	m := reBlockStart.FindStringSubmatch(line)
	if m == nil {
		return 0, errorf(UnrecognizedLine, "'%s' is not an alignment marker.", line)
	}
	return readInt(m[1], "alignment number")
}

// isQueryField reports whether line is the 'Query' field that opens the
// header of a query result.
func isQueryField(line string) bool {
	key, _ := splitField(line)
	return key == "Query"
}

// splitField splits a 'Key   value' header line.
func splitField(line string) (key, value string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func (s parseState) String() string {
	switch s {
	case stateHeader:
		return "header"
	case stateTable:
		return "hit table"
	case stateHits:
		return "hit list"
	case stateBlock:
		return "alignment block"
	case stateDone:
		return "end of report"
	}
	panic(fmt.Sprintf("BUG: Unknown parse state: %d", int(s)))
}

func (k lineKind) String() string {
	switch k {
	case lineUnknown:
		return "unknown line"
	case lineBlank:
		return "blank line"
	case lineHeaderField:
		return "header field"
	case lineTableHeader:
		return "hit table header"
	case lineTableRow:
		return "hit table row"
	case lineBlockStart:
		return "alignment marker"
	case lineBlockName:
		return "alignment name"
	case lineBlockScores:
		return "alignment scores"
	case lineQuery:
		return "query alignment line"
	case lineTemplate:
		return "template alignment line"
	case lineConfidence:
		return "confidence line"
	case lineMatch:
		return "match line"
	case lineNewQuery:
		return "new query"
	case lineEnd:
		return "end marker"
	}
	panic(fmt.Sprintf("BUG: Unknown line kind: %d", int(k)))
}
