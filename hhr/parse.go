package hhr

import (
	"go.uber.org/zap"

	"github.com/TuftsBCB/seq"
)

// parser accumulates a single query result. It is fed one classified line at
// a time and never looks back.
type parser struct {
	state   parseState
	started bool
	trust   bool
	log     *zap.Logger

	id        string
	seqLen    int
	hasID     bool
	hasSeqLen bool
	meta      Meta

	layout *tableLayout
	rows   []Row
	blocks []*block
	cur    *block
}

func newParser(trust bool, log *zap.Logger) *parser {
	return &parser{
		state: stateHeader,
		trust: trust,
		log:   log,
		rows:  make([]Row, 0, 10),
	}
}

// feed consumes a single line. lineNo is only used for logging; errors are
// tagged with line numbers by the caller.
func (p *parser) feed(kind lineKind, line string, lineNo int) error {
	next, ok := transition(p.state, kind)
	if !ok {
		return errorf(UnrecognizedLine, "Unexpected %s in %s: '%s'",
			kind, p.state, line)
	}
	p.started = true

	var err error
	switch kind {
	case lineHeaderField:
		err = p.headerField(line)
	case lineTableHeader:
		p.layout, err = newTableLayout(line)
	case lineTableRow:
		var row Row
		if row, err = p.layout.parseRow(line); err == nil {
			p.rows = append(p.rows, row)
		}
	case lineBlockStart:
		if err = p.closeBlock(); err == nil {
			var num int
			if num, err = blockNumber(line); err == nil {
				p.cur = newBlock(num, lineNo)
			}
		}
	case lineEnd:
		err = p.closeBlock()
	case lineBlank:
		if p.cur != nil {
			err = p.cur.add(kind, line)
		}
	default:
		if p.cur == nil {
			// Block lines are only classified in stateBlock, which is only
			// entered through a block start.
			panic("BUG: block line without an open block")
		}
		err = p.cur.add(kind, line)
	}
	if err != nil {
		return err
	}

	if next != p.state {
		p.log.Debug("hhr: section change",
			zap.Int("line", lineNo),
			zap.Stringer("from", p.state),
			zap.Stringer("to", next))
	}
	p.state = next
	return nil
}

// headerField reads a 'Key   value' line from the header. Keys this package
// does not interpret are kept in Meta.Other.
func (p *parser) headerField(line string) error {
	key, value := splitField(line)
	switch key {
	case "Query":
		if p.hasID {
			return errorf(IncompleteReport,
				"Query '%s' ended before its hit table.", p.id)
		}
		p.id, p.hasID = value, len(value) > 0
	case "Match_columns":
		n, err := readInt(value, "Match_columns")
		if err != nil {
			return err
		}
		p.seqLen, p.hasSeqLen = n, true
	case "No_of_seqs":
		p.meta.NumSeqs = value
	case "Neff":
		f, _, err := decodeFloat(value)
		if err != nil {
			return err
		}
		p.meta.Neff = seq.Prob(f)
	case "Searched_HMMs":
		n, _, err := decodeInt(value)
		if err != nil {
			return err
		}
		p.meta.SearchedHMMs = n
	case "Date":
		p.meta.Date = value
	case "Command":
		p.meta.Command = value
	default:
		if p.meta.Other == nil {
			p.meta.Other = make(map[string]string)
		}
		p.meta.Other[key] = value
	}
	return nil
}

// closeBlock validates the block being read, if any, and sets it aside for
// assembly.
func (p *parser) closeBlock() error {
	if p.cur == nil {
		return nil
	}
	b := p.cur
	p.cur = nil
	if err := b.validate(); err != nil {
		return atLine(err, b.line)
	}
	p.blocks = append(p.blocks, b)
	return nil
}

// finish closes the last block and assembles the query result.
func (p *parser) finish() (*QueryResult, error) {
	if err := p.closeBlock(); err != nil {
		return nil, err
	}
	qr, err := p.assemble()
	if err != nil {
		return nil, err
	}
	p.log.Debug("hhr: query result",
		zap.String("query", qr.ID),
		zap.Int("rows", len(qr.Summary)),
		zap.Int("hits", len(qr.Hits)))
	return qr, nil
}
