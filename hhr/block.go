package hhr

import (
	"regexp"
	"strings"

	"github.com/TuftsBCB/seq"
)

// An aligned sequence line looks like
//
//	Q 2UVO:A|PDBID|C    1 ERCGEQGSNMECPNNLCCSQ   20 (171)
//
// The name is cut to a fixed width and may contain spaces (a query named
// 'Only X amino acids' is printed as 'Only X amino a'), so the line is
// matched from the right.
var reAligned = regexp.MustCompile(
	`^([QT]) (.*?)\s+([0-9]+) (\S+)\s+([0-9]+) +\(([0-9]+)\)$`)

// Names of the Q/T lines that annotate an alignment rather than hold one of
// its sequences. Consensus lines carry coordinates just like sequence lines.
var annotationNames = map[string]bool{
	"Consensus": true,
	"ss_pred":   true,
	"ss_dssp":   true,
	"ss_conf":   true,
}

// Labels under which annotation lines are kept in HSP.Annotations.
const (
	AnnotationConfidence = "Confidence"
	AnnotationMatch      = "Match"
)

// blockScores are the values on the 'Probab=...' line of a block.
type blockScores struct {
	prob, evalue, score          float64
	hasProb, hasEValue, hasScore bool
	alignedCols                  int
	identity, similarity         float64
	sumProbs, templateNeff       float64
}

// side accumulates one sequence of an alignment across wrapped chunks.
type side struct {
	start, end, length int
	residues           []byte
	seen               bool
}

// chunk is one wrapped piece of an alignment: a query line, a template line
// and the annotation lines around them, all sharing one residue column.
type chunk struct {
	col, width  int
	hasCol      bool
	hasQuery    bool
	hasTemplate bool
	annotations map[string]string
}

type annotationLine struct {
	label, line string
}

// block is a single 'No N' alignment section as read from the report,
// before it is reconciled with the hit table.
type block struct {
	num         int
	line        int
	name        string
	description string
	hasName     bool
	hasScores   bool
	scores      blockScores
	query       side
	template    side
	chunks      []*chunk
	pending     []annotationLine
	labels      []string
}

func newBlock(num, line int) *block {
	return &block{num: num, line: line}
}

// add consumes a single line that belongs to this block.
func (b *block) add(kind lineKind, line string) error {
	switch kind {
	case lineBlank:
		return nil
	case lineBlockName:
		if b.hasName {
			return errorf(UnrecognizedLine,
				"Alignment No %d has a second name line.", b.num)
		}
		b.name, b.description = splitName(line[1:])
		if len(b.name) == 0 {
			return errorf(UnrecognizedLine,
				"Alignment No %d has an empty name.", b.num)
		}
		b.hasName = true
		return nil
	}

	if !b.hasName {
		return errorf(UnrecognizedLine,
			"Expected the '>' name line of alignment No %d, but got '%s'.",
			b.num, line)
	}
	switch kind {
	case lineBlockScores:
		if b.hasScores || b.query.seen || b.template.seen {
			return errorf(UnrecognizedLine,
				"Unexpected scores line in alignment No %d.", b.num)
		}
		b.hasScores = true
		return b.readScores(line)
	case lineQuery, lineTemplate:
		return b.readAligned(line)
	case lineConfidence:
		return b.annotate(AnnotationConfidence, line, false)
	case lineMatch:
		return b.annotate(AnnotationMatch, line, false)
	}
	return errorf(UnrecognizedLine, "Unexpected %s in alignment No %d.",
		kind, b.num)
}

// readScores reads 'Probab=99.96  E-value=3.7e-34  Score=210.31 ...'.
// Keys this package doesn't know about are skipped, since they vary across
// versions of the search tools.
func (b *block) readScores(line string) error {
	s := &b.scores
	for _, field := range strings.Fields(line) {
		eq := strings.IndexByte(field, '=')
		if eq <= 0 {
			return errorf(UnrecognizedLine,
				"'%s' in the scores of alignment No %d is not a key=value pair.",
				field, b.num)
		}
		key, val := field[:eq], field[eq+1:]

		var err error
		switch key {
		case "Probab":
			s.prob, s.hasProb, err = decodeFloat(val)
			s.prob /= 100.0
		case "E-value":
			s.evalue, s.hasEValue, err = decodeFloat(val)
		case "Score":
			s.score, s.hasScore, err = decodeFloat(val)
		case "Aligned_cols":
			s.alignedCols, _, err = decodeInt(val)
		case "Identities":
			s.identity, _, err = decodeFloat(strings.TrimSuffix(val, "%"))
			s.identity /= 100.0
		case "Similarity":
			s.similarity, _, err = decodeFloat(val)
		case "Sum_probs":
			s.sumProbs, _, err = decodeFloat(val)
		case "Template_Neff":
			s.templateNeff, _, err = decodeFloat(val)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readAligned reads a 'Q ...' or 'T ...' line. Lines without coordinates
// (like 'Q ss_pred') and consensus lines are kept as annotations.
func (b *block) readAligned(line string) error {
	isQuery := line[0] == 'Q'
	m := reAligned.FindStringSubmatchIndex(line)
	if m == nil {
		return b.annotate(annotationLabel(line), line, isQuery)
	}
	name := strings.TrimSpace(line[m[4]:m[5]])
	if annotationNames[name] {
		return b.annotate(line[0:1]+" "+name, line, isQuery)
	}

	start, err := readInt(line[m[6]:m[7]], "alignment start")
	if err != nil {
		return err
	}
	end, err := readInt(line[m[10]:m[11]], "alignment end")
	if err != nil {
		return err
	}
	length, err := readInt(line[m[12]:m[13]], "sequence length")
	if err != nil {
		return err
	}
	col, residues := m[8], line[m[8]:m[9]]

	c := b.current()
	if c == nil || c.hasTemplate || (isQuery && c.hasQuery) {
		c = b.newChunk()
	}
	if !c.hasCol {
		c.col, c.width, c.hasCol = col, len(residues), true
	}

	sd := &b.template
	if isQuery {
		sd, c.hasQuery = &b.query, true
	} else {
		c.hasTemplate = true
	}
	if !sd.seen {
		sd.start, sd.seen = start, true
	}
	sd.end, sd.length = end, length
	sd.residues = append(sd.residues, residues...)

	for _, a := range b.pending {
		if err := b.resolve(c, a); err != nil {
			return err
		}
	}
	b.pending = b.pending[:0]
	return nil
}

// annotate records an annotation line. Its text is cut out of the line at
// the residue column of the chunk it belongs to. Query annotations such as
// 'Q ss_pred' are printed before the query line of their chunk, so they wait
// for it.
func (b *block) annotate(label, line string, isQuery bool) error {
	a := annotationLine{label, line}
	c := b.current()
	if c == nil || !c.hasCol || (isQuery && (c.hasTemplate || !c.hasQuery)) {
		for _, p := range b.pending {
			if p.label == label {
				return b.duplicate(label)
			}
		}
		b.pending = append(b.pending, a)
		return nil
	}
	return b.resolve(c, a)
}

// resolve adds an annotation to chunk c. A chunk has at most one line of
// each annotation.
func (b *block) resolve(c *chunk, a annotationLine) error {
	if _, ok := c.annotations[a.label]; ok {
		return b.duplicate(a.label)
	}
	found := false
	for _, l := range b.labels {
		if l == a.label {
			found = true
			break
		}
	}
	if !found {
		b.labels = append(b.labels, a.label)
	}
	c.annotations[a.label] = columns(a.line, c.col, c.width)
	return nil
}

func (b *block) duplicate(label string) error {
	return errorf(UnrecognizedLine,
		"Second '%s' line in one chunk of alignment No %d.", label, b.num)
}

func (b *block) current() *chunk {
	if len(b.chunks) == 0 {
		return nil
	}
	return b.chunks[len(b.chunks)-1]
}

func (b *block) newChunk() *chunk {
	c := &chunk{annotations: make(map[string]string, 8)}
	b.chunks = append(b.chunks, c)
	return c
}

// validate checks the invariants of a finished block that don't depend on
// the hit table.
func (b *block) validate() error {
	if !b.hasName {
		return errorf(StructuralInvariantViolation,
			"Alignment No %d has no '>' name line.", b.num)
	}
	if !b.query.seen || !b.template.seen {
		return errorf(MisalignedBlock,
			"Alignment No %d (%s) is missing its query or template sequence.",
			b.num, b.name)
	}
	if len(b.query.residues) != len(b.template.residues) {
		return errorf(MisalignedBlock,
			"Alignment No %d (%s) has a query of length %d but a template "+
				"of length %d.", b.num, b.name,
			len(b.query.residues), len(b.template.residues))
	}
	if err := b.query.validate(b, "query"); err != nil {
		return err
	}
	return b.template.validate(b, "template")
}

func (sd *side) validate(b *block, which string) error {
	n := countResidues(sd.residues)
	if sd.end-sd.start+1 != n {
		return errorf(CoordinateMismatch,
			"Alignment No %d (%s) declares %s range %d-%d, but its aligned "+
				"%s sequence has %d residues.", b.num, b.name,
			which, sd.start, sd.end, which, n)
	}
	if sd.start < 1 || sd.end > sd.length {
		return errorf(CoordinateMismatch,
			"Alignment No %d (%s) has %s range %d-%d outside of a sequence "+
				"of length %d.", b.num, b.name, which, sd.start, sd.end,
			sd.length)
	}
	return nil
}

// annotations joins the annotation text of every chunk. A chunk that lacks
// an annotation contributes blanks, so every annotation spans the whole
// alignment.
func (b *block) annotations() map[string]string {
	if len(b.labels) == 0 {
		return nil
	}
	all := make(map[string]string, len(b.labels))
	for _, label := range b.labels {
		var buf strings.Builder
		for _, c := range b.chunks {
			if text, ok := c.annotations[label]; ok {
				buf.WriteString(text)
			} else {
				buf.WriteString(strings.Repeat(" ", c.width))
			}
		}
		all[label] = buf.String()
	}
	return all
}

func (sd *side) sequence(name string) seq.Sequence {
	return seq.Sequence{
		Name:     name,
		Residues: []seq.Residue(string(sd.residues)),
	}
}

// countResidues returns the number of non-gap characters in an aligned
// sequence.
func countResidues(aligned []byte) int {
	n := 0
	for _, b := range aligned {
		if b != '-' && b != '.' {
			n++
		}
	}
	return n
}

// annotationLabel returns 'Q ss_pred' for 'Q ss_pred      CCHHH'.
func annotationLabel(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fields[0]
	}
	return fields[0] + " " + fields[1]
}

// columns returns line[col:col+width], padding with blanks where the line
// is short because trailing whitespace was removed.
func columns(line string, col, width int) string {
	if len(line) < col+width {
		line += strings.Repeat(" ", col+width-len(line))
	}
	return line[col : col+width]
}
