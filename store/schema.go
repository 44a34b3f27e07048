package store

// schema is run every time a store is opened.
const schema = `
CREATE TABLE IF NOT EXISTS query_results (
	id            TEXT PRIMARY KEY,
	program       TEXT NOT NULL,
	query_id      TEXT NOT NULL,
	seq_len       INTEGER NOT NULL,
	num_seqs      TEXT NOT NULL,
	neff          REAL NOT NULL,
	searched_hmms INTEGER NOT NULL,
	date          TEXT NOT NULL,
	command       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS header_fields (
	query_result_id TEXT NOT NULL REFERENCES query_results(id),
	key             TEXT NOT NULL,
	value           TEXT NOT NULL,
	PRIMARY KEY (query_result_id, key)
);

CREATE TABLE IF NOT EXISTS summary_rows (
	query_result_id TEXT NOT NULL REFERENCES query_results(id),
	position        INTEGER NOT NULL,
	num             INTEGER NOT NULL,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL,
	prob            REAL NOT NULL,
	evalue          REAL NOT NULL,
	pvalue          REAL NOT NULL,
	score           REAL NOT NULL,
	ss_score        REAL NOT NULL,
	aligned_cols    INTEGER NOT NULL,
	query_start     INTEGER NOT NULL,
	query_end       INTEGER NOT NULL,
	template_start  INTEGER NOT NULL,
	template_end    INTEGER NOT NULL,
	template_len    INTEGER NOT NULL,
	PRIMARY KEY (query_result_id, position)
);

CREATE TABLE IF NOT EXISTS hits (
	id              INTEGER PRIMARY KEY,
	query_result_id TEXT NOT NULL REFERENCES query_results(id),
	position        INTEGER NOT NULL,
	hit_id          TEXT NOT NULL,
	name            TEXT NOT NULL,
	num             INTEGER NOT NULL,
	description     TEXT NOT NULL,
	is_included     INTEGER NOT NULL,
	prob            REAL NOT NULL,
	evalue          REAL NOT NULL,
	score           REAL NOT NULL,
	UNIQUE (query_result_id, hit_id)
);

CREATE TABLE IF NOT EXISTS hsps (
	id            INTEGER PRIMARY KEY,
	hit           INTEGER NOT NULL REFERENCES hits(id),
	position      INTEGER NOT NULL,
	is_included   INTEGER NOT NULL,
	prob          REAL NOT NULL,
	evalue        REAL NOT NULL,
	score         REAL NOT NULL,
	aligned_cols  INTEGER NOT NULL,
	identity      REAL NOT NULL,
	similarity    REAL NOT NULL,
	sum_probs     REAL NOT NULL,
	template_neff REAL NOT NULL,
	hit_start     INTEGER NOT NULL,
	hit_end       INTEGER NOT NULL,
	hit_len       INTEGER NOT NULL,
	query_start   INTEGER NOT NULL,
	query_end     INTEGER NOT NULL,
	query_len     INTEGER NOT NULL,
	hit_seq       TEXT NOT NULL,
	query_seq     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS annotations (
	hsp   INTEGER NOT NULL REFERENCES hsps(id),
	label TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (hsp, label)
);

CREATE INDEX IF NOT EXISTS hits_by_query ON hits (query_result_id, position);
CREATE INDEX IF NOT EXISTS hsps_by_hit ON hsps (hit, position);
`
