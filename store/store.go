/*
Package store keeps query results in a SQLite database, so that the hits of
many reports can be looked up without parsing them again.

Every query result put in a store gets a random UUID. Getting it back by that
UUID rebuilds the same tree the hhr package returned, including the hit
table, the aligned sequences and their annotations.
*/
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/TuftsBCB/searchio/hhr"
)

// ErrNotFound is returned by Get for an unknown identifier.
var ErrNotFound = errors.New("query result not found")

// Store is a SQLite database of query results. It is safe for concurrent
// use.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Entry describes a query result in the store.
type Entry struct {
	ID      uuid.UUID
	Query   string
	NumHits int
}

// Open opens (and creates, if necessary) the store in the SQLite database
// file 'path'. Use ":memory:" for a store that lives as long as the Store.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Error opening store '%s': %w", path, err)
	}
	// SQLite has a single writer, and a ':memory:' database only exists
	// on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Error creating tables in '%s': %w", path, err)
	}
	log.Debug("store: opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put adds a query result to the store and returns its new identifier.
// Either all of it is stored or, on error, none of it.
func (s *Store) Put(ctx context.Context, qr *hhr.QueryResult) (uuid.UUID, error) {
	id := uuid.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fail to begin tx %w", err)
	}
	defer tx.Rollback()

	if err := putQueryResult(ctx, tx, id, qr); err != nil {
		return uuid.Nil, fmt.Errorf("Error storing query '%s': %w", qr.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("Error storing query '%s': %w", qr.ID, err)
	}
	s.log.Debug("store: put",
		zap.Stringer("id", id),
		zap.String("query", qr.ID),
		zap.Int("hits", qr.Len()))
	return id, nil
}

func putQueryResult(
	ctx context.Context,
	tx *sql.Tx,
	id uuid.UUID,
	qr *hhr.QueryResult,
) error {
	key := id.String()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO query_results (id, program, query_id, seq_len, num_seqs,
			neff, searched_hmms, date, command)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key, qr.Program, qr.ID, qr.SeqLen, qr.Meta.NumSeqs,
		float64(qr.Meta.Neff), qr.Meta.SearchedHMMs, qr.Meta.Date,
		qr.Meta.Command)
	if err != nil {
		return err
	}

	for k, v := range qr.Meta.Other {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO header_fields (query_result_id, key, value)
			VALUES (?, ?, ?)`, key, k, v)
		if err != nil {
			return err
		}
	}

	for i, row := range qr.Summary {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO summary_rows (query_result_id, position, num, name,
				description, prob, evalue, pvalue, score, ss_score,
				aligned_cols, query_start, query_end, template_start,
				template_end, template_len)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			key, i, row.Num, row.Name, row.Description, row.Prob, row.EValue,
			row.PValue, row.Score, row.SSScore, row.NumAlignedCols,
			row.QueryStart, row.QueryEnd, row.TemplateStart, row.TemplateEnd,
			row.NumTemplateCols)
		if err != nil {
			return err
		}
	}

	for i, hit := range qr.Hits {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO hits (query_result_id, position, hit_id, name, num,
				description, is_included, prob, evalue, score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			key, i, hit.ID, hit.Name, hit.Num, hit.Description,
			hit.IsIncluded, hit.Prob, hit.EValue, hit.Score)
		if err != nil {
			return err
		}
		hitRow, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for j, hsp := range hit.HSPs {
			if err := putHSP(ctx, tx, hitRow, j, hsp); err != nil {
				return fmt.Errorf("hit '%s': %w", hit.ID, err)
			}
		}
	}
	return nil
}

func putHSP(ctx context.Context, tx *sql.Tx, hit int64, pos int, hsp hhr.HSP) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO hsps (hit, position, is_included, prob, evalue, score,
			aligned_cols, identity, similarity, sum_probs, template_neff,
			hit_start, hit_end, hit_len, query_start, query_end, query_len,
			hit_seq, query_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hit, pos, hsp.IsIncluded, hsp.Prob, hsp.EValue, hsp.Score,
		hsp.NumAlignedCols, hsp.Identity, hsp.Similarity, hsp.SumProbs,
		hsp.TemplateNeff, hsp.HitStart, hsp.HitEnd, hsp.HitLen,
		hsp.QueryStart, hsp.QueryEnd, hsp.QueryLen,
		string(hsp.Hit.Residues), string(hsp.Query.Residues))
	if err != nil {
		return err
	}
	hspRow, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for label, value := range hsp.Annotations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO annotations (hsp, label, value) VALUES (?, ?, ?)`,
			hspRow, label, value)
		if err != nil {
			return err
		}
	}
	return nil
}

// Queries lists the query results in the store, in the order they were put.
func (s *Store) Queries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.query_id, COUNT(h.id)
		FROM query_results q
		LEFT JOIN hits h ON h.query_result_id = q.id
		GROUP BY q.id
		ORDER BY q.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, 16)
	for rows.Next() {
		var e Entry
		var key string
		if err := rows.Scan(&key, &e.Query, &e.NumHits); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(key); err != nil {
			return nil, fmt.Errorf("Bad query result id '%s' in store: %w",
				key, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
