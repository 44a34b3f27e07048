package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TuftsBCB/seq"
	"github.com/google/uuid"

	"github.com/TuftsBCB/searchio/hhr"
)

// Get rebuilds the query result with the given identifier.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*hhr.QueryResult, error) {
	key := id.String()
	qr := &hhr.QueryResult{}

	var neff float64
	err := s.db.QueryRowContext(ctx, `
		SELECT program, query_id, seq_len, num_seqs, neff, searched_hmms,
			date, command
		FROM query_results WHERE id = ?`, key).Scan(
		&qr.Program, &qr.ID, &qr.SeqLen, &qr.Meta.NumSeqs, &neff,
		&qr.Meta.SearchedHMMs, &qr.Meta.Date, &qr.Meta.Command)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	qr.Meta.Neff = seq.Prob(neff)

	// Each step reads all of its rows before the next one starts, since the
	// store has a single connection.
	steps := []func(context.Context, string, *hhr.QueryResult) error{
		s.getHeaderFields,
		s.getSummary,
		s.getHits,
	}
	for _, step := range steps {
		if err := step(ctx, key, qr); err != nil {
			return nil, fmt.Errorf("Error reading query result %s: %w", id, err)
		}
	}
	return qr, nil
}

func (s *Store) getHeaderFields(ctx context.Context, key string, qr *hhr.QueryResult) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM header_fields WHERE query_result_id = ?`, key)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		if qr.Meta.Other == nil {
			qr.Meta.Other = make(map[string]string)
		}
		qr.Meta.Other[k] = v
	}
	return rows.Err()
}

func (s *Store) getSummary(ctx context.Context, key string, qr *hhr.QueryResult) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT num, name, description, prob, evalue, pvalue, score, ss_score,
			aligned_cols, query_start, query_end, template_start,
			template_end, template_len
		FROM summary_rows WHERE query_result_id = ?
		ORDER BY position`, key)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r hhr.Row
		if err := rows.Scan(
			&r.Num, &r.Name, &r.Description, &r.Prob, &r.EValue, &r.PValue,
			&r.Score, &r.SSScore, &r.NumAlignedCols, &r.QueryStart,
			&r.QueryEnd, &r.TemplateStart, &r.TemplateEnd,
			&r.NumTemplateCols); err != nil {
			return err
		}
		qr.Summary = append(qr.Summary, r)
	}
	return rows.Err()
}

func (s *Store) getHits(ctx context.Context, key string, qr *hhr.QueryResult) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hit_id, name, num, description, is_included, prob, evalue,
			score
		FROM hits WHERE query_result_id = ?
		ORDER BY position`, key)
	if err != nil {
		return err
	}

	byRow := make(map[int64]int)
	qr.Hits = make([]hhr.Hit, 0, 16)
	for rows.Next() {
		var h hhr.Hit
		var rowid int64
		if err := rows.Scan(&rowid, &h.ID, &h.Name, &h.Num, &h.Description,
			&h.IsIncluded, &h.Prob, &h.EValue, &h.Score); err != nil {
			rows.Close()
			return err
		}
		byRow[rowid] = len(qr.Hits)
		qr.Hits = append(qr.Hits, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	hsps, err := s.getHSPs(ctx, key, qr, byRow)
	if err != nil {
		return err
	}
	return s.getAnnotations(ctx, key, hsps)
}

// getHSPs adds the HSPs to the hits of qr, and returns them by row id.
func (s *Store) getHSPs(
	ctx context.Context,
	key string,
	qr *hhr.QueryResult,
	byRow map[int64]int,
) (map[int64]*hhr.HSP, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.hit, p.is_included, p.prob, p.evalue, p.score,
			p.aligned_cols, p.identity, p.similarity, p.sum_probs,
			p.template_neff, p.hit_start, p.hit_end, p.hit_len,
			p.query_start, p.query_end, p.query_len, p.hit_seq, p.query_seq
		FROM hsps p JOIN hits h ON p.hit = h.id
		WHERE h.query_result_id = ?
		ORDER BY h.position, p.position`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type located struct {
		hit, pos int
	}
	where := make(map[int64]located)
	for rows.Next() {
		var p hhr.HSP
		var rowid, hitRow int64
		var hitSeq, querySeq string
		if err := rows.Scan(&rowid, &hitRow, &p.IsIncluded, &p.Prob,
			&p.EValue, &p.Score, &p.NumAlignedCols, &p.Identity,
			&p.Similarity, &p.SumProbs, &p.TemplateNeff, &p.HitStart,
			&p.HitEnd, &p.HitLen, &p.QueryStart, &p.QueryEnd, &p.QueryLen,
			&hitSeq, &querySeq); err != nil {
			return nil, err
		}
		i, ok := byRow[hitRow]
		if !ok {
			return nil, fmt.Errorf("HSP %d belongs to unknown hit %d.",
				rowid, hitRow)
		}
		hit := &qr.Hits[i]
		p.Hit = seq.Sequence{Name: hit.Name, Residues: []seq.Residue(hitSeq)}
		p.Query = seq.Sequence{Name: qr.ID, Residues: []seq.Residue(querySeq)}
		where[rowid] = located{i, len(hit.HSPs)}
		hit.HSPs = append(hit.HSPs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Pointers are taken once every append is done.
	hsps := make(map[int64]*hhr.HSP, len(where))
	for rowid, loc := range where {
		hsps[rowid] = &qr.Hits[loc.hit].HSPs[loc.pos]
	}
	return hsps, nil
}

func (s *Store) getAnnotations(ctx context.Context, key string, hsps map[int64]*hhr.HSP) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.hsp, a.label, a.value
		FROM annotations a
		JOIN hsps p ON a.hsp = p.id
		JOIN hits h ON p.hit = h.id
		WHERE h.query_result_id = ?`, key)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rowid int64
		var label, value string
		if err := rows.Scan(&rowid, &label, &value); err != nil {
			return err
		}
		hsp, ok := hsps[rowid]
		if !ok {
			return fmt.Errorf("Annotation '%s' belongs to unknown HSP %d.",
				label, rowid)
		}
		if hsp.Annotations == nil {
			hsp.Annotations = make(map[string]string)
		}
		hsp.Annotations[label] = value
	}
	return rows.Err()
}
