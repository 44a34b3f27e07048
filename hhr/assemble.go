package hhr

import (
	"fmt"
	"strings"
)

// assemble reconciles the hit table with the alignment blocks and builds the
// final query result. Nothing is returned unless every check passes.
//
// Blocks are matched to table rows by their running index ('No N' goes with
// row N) and not by name, since the same name may be listed many times.
// There is one hit per block. Table rows without a block (when the report
// lists more hits than it prints alignments for) only appear in Summary.
func (p *parser) assemble() (*QueryResult, error) {
	switch {
	case !p.hasID:
		return nil, errorf(IncompleteReport, "Missing 'Query' in header.")
	case !p.hasSeqLen:
		return nil, errorf(IncompleteReport,
			"Missing 'Match_columns' in header of query '%s'.", p.id)
	case p.layout == nil:
		return nil, errorf(IncompleteReport,
			"Query '%s' has no hit table.", p.id)
	case len(p.rows) == 0:
		return nil, errorf(IncompleteReport,
			"The hit table of query '%s' has no rows.", p.id)
	case len(p.blocks) == 0:
		return nil, errorf(IncompleteReport,
			"Query '%s' lists %d hits but has no alignments.",
			p.id, len(p.rows))
	}
	for i, row := range p.rows {
		if row.Num != i+1 {
			return nil, errorf(StructuralInvariantViolation,
				"Row %d of the hit table of query '%s' is numbered %d.",
				i+1, p.id, row.Num)
		}
	}

	qr := &QueryResult{
		Program: Program,
		ID:      p.id,
		SeqLen:  p.seqLen,
		Meta:    p.meta,
		Summary: p.rows,
		Hits:    make([]Hit, 0, len(p.blocks)),
	}
	occurrences := make(map[string]int, len(p.blocks))
	last := 0
	for _, b := range p.blocks {
		if b.num <= last {
			return nil, atLine(errorf(StructuralInvariantViolation,
				"Alignment No %d follows alignment No %d.", b.num, last), b.line)
		}
		last = b.num

		if b.num > len(p.rows) {
			return nil, atLine(errorf(StructuralInvariantViolation,
				"Alignment No %d (%s) has no row in a hit table of %d rows.",
				b.num, b.name, len(p.rows)), b.line)
		}
		row := p.rows[b.num-1]
		if !strings.HasPrefix(b.name, row.Name) {
			return nil, atLine(errorf(StructuralInvariantViolation,
				"Alignment No %d is for '%s', but hit %d in the table "+
					"is '%s'.", b.num, b.name, b.num, row.Name), b.line)
		}

		hsp, err := p.hsp(b, row)
		if err != nil {
			return nil, atLine(err, b.line)
		}

		hit := Hit{
			Name:        b.name,
			Num:         b.num,
			Description: b.description,
			IsIncluded:  hsp.IsIncluded,
			Prob:        hsp.Prob,
			EValue:      hsp.EValue,
			Score:       hsp.Score,
			HSPs:        []HSP{hsp},
		}
		if len(hit.Description) == 0 {
			hit.Description = row.Description
		}
		occurrences[hit.Name]++
		hit.ID = fmt.Sprintf("%s_%d", hit.Name, occurrences[hit.Name])
		qr.Hits = append(qr.Hits, hit)
	}
	return qr, nil
}

// hsp builds the single HSP of a block. Values from the block's scores line
// take precedence over those of the (rounded) table row.
func (p *parser) hsp(b *block, row Row) (HSP, error) {
	s := b.scores
	hsp := HSP{
		// Every hit in a report passed the thresholds of the search.
		IsIncluded:     true,
		Prob:           s.prob,
		EValue:         s.evalue,
		Score:          s.score,
		NumAlignedCols: s.alignedCols,
		Identity:       s.identity,
		Similarity:     s.similarity,
		SumProbs:       s.sumProbs,
		TemplateNeff:   s.templateNeff,
		QueryStart:     b.query.start,
		QueryEnd:       b.query.end,
		QueryLen:       b.query.length,
		HitStart:       b.template.start,
		HitEnd:         b.template.end,
		HitLen:         b.template.length,
		Query:          b.query.sequence(p.id),
		Hit:            b.template.sequence(b.name),
		Annotations:    b.annotations(),
	}
	if !s.hasProb {
		hsp.Prob = row.Prob
	}
	if !s.hasEValue {
		hsp.EValue = row.EValue
	}
	if !s.hasScore {
		hsp.Score = row.Score
	}
	if hsp.NumAlignedCols == 0 {
		hsp.NumAlignedCols = row.NumAlignedCols
	}

	if p.trust {
		return hsp, nil
	}
	if hsp.QueryLen != p.seqLen {
		return HSP{}, errorf(CoordinateMismatch,
			"Alignment No %d (%s) is against a query of length %d, but the "+
				"query has %d match columns.", b.num, b.name,
			hsp.QueryLen, p.seqLen)
	}
	declared := [...]int{row.QueryStart, row.QueryEnd,
		row.TemplateStart, row.TemplateEnd, row.NumTemplateCols}
	aligned := [...]int{hsp.QueryStart, hsp.QueryEnd,
		hsp.HitStart, hsp.HitEnd, hsp.HitLen}
	if declared != aligned {
		return HSP{}, errorf(CoordinateMismatch,
			"Alignment No %d (%s) covers query %d-%d and template %d-%d "+
				"(%d), but the hit table declares query %d-%d and "+
				"template %d-%d (%d).", b.num, b.name,
			aligned[0], aligned[1], aligned[2], aligned[3], aligned[4],
			declared[0], declared[1], declared[2], declared[3], declared[4])
	}
	return hsp, nil
}
