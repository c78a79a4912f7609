package store

// Schema is the complete snspick schema. JSON payloads (profiles, criteria
// maps, snapshots, error lists) are stored as TEXT; timestamps are Unix
// milliseconds.
const Schema = `
-- Campaign applicants, keyed by email
CREATE TABLE IF NOT EXISTS applicants (
    email           TEXT PRIMARY KEY,
    name            TEXT NOT NULL DEFAULT '',
    naver_blog_url  TEXT NOT NULL DEFAULT '',
    instagram_url   TEXT NOT NULL DEFAULT '',
    threads_url     TEXT NOT NULL DEFAULT '',
    row_index       INTEGER NOT NULL DEFAULT 0,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);

-- Influence verifications, write-once per run
CREATE TABLE IF NOT EXISTS verifications (
    id              TEXT PRIMARY KEY,
    applicant_email TEXT NOT NULL,
    profiles_json   TEXT NOT NULL DEFAULT '[]',
    meets_json      TEXT NOT NULL DEFAULT '{}',
    meets_all       INTEGER NOT NULL DEFAULT 0,
    score           REAL NOT NULL DEFAULT 0,
    verified_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verifications_email ON verifications(applicant_email, verified_at DESC);

-- Selection decisions, one row per applicant per batch pass
CREATE TABLE IF NOT EXISTS selection_records (
    id              TEXT PRIMARY KEY,
    applicant_email TEXT NOT NULL,
    selected        INTEGER NOT NULL DEFAULT 0,
    reason          TEXT NOT NULL DEFAULT '',
    meets_json      TEXT NOT NULL DEFAULT '{}',
    qualifying_json TEXT NOT NULL DEFAULT '[]',
    snapshot_json   TEXT NOT NULL DEFAULT '[]',
    status          TEXT NOT NULL DEFAULT 'pending',
    sheet_synced    INTEGER NOT NULL DEFAULT 0,
    email_sent      INTEGER NOT NULL DEFAULT 0,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_selection_email ON selection_records(applicant_email);
CREATE INDEX IF NOT EXISTS idx_selection_status ON selection_records(status);

-- Batch process bookkeeping
CREATE TABLE IF NOT EXISTS batch_processes (
    id              TEXT PRIMARY KEY,
    total           INTEGER NOT NULL DEFAULT 0,
    processed       INTEGER NOT NULL DEFAULT 0,
    selected        INTEGER NOT NULL DEFAULT 0,
    rejected        INTEGER NOT NULL DEFAULT 0,
    status          TEXT NOT NULL DEFAULT 'running',
    errors_json     TEXT NOT NULL DEFAULT '[]',
    started_at      INTEGER NOT NULL,
    finished_at     INTEGER
);
CREATE INDEX IF NOT EXISTS idx_batch_started ON batch_processes(started_at DESC);

-- Per-endpoint rate limit rules (read by the shield middleware)
CREATE TABLE IF NOT EXISTS rate_limits (
    endpoint        TEXT PRIMARY KEY,
    max_requests    INTEGER NOT NULL DEFAULT 60,
    window_seconds  INTEGER NOT NULL DEFAULT 60,
    enabled         INTEGER NOT NULL DEFAULT 1
);
INSERT OR IGNORE INTO rate_limits (endpoint, max_requests, window_seconds, enabled)
VALUES ('POST /api/verification', 30, 60, 1),
       ('POST /api/selection/process', 5, 60, 1);
`
