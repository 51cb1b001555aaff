package db

// Schema is the DDL for the run ledger. It records what each run did, never
// the tasks themselves.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    started_at      TEXT NOT NULL,
    finished_at     TEXT NOT NULL,
    skipped         INTEGER NOT NULL DEFAULT 0,
    skip_reason     TEXT,
    success_count   INTEGER NOT NULL DEFAULT 0,
    error_count     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_accounts (
    run_id          TEXT NOT NULL,
    account         TEXT NOT NULL,
    stage           TEXT,
    error           TEXT,
    task_count      INTEGER NOT NULL DEFAULT 0,
    skipped_lists   INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, account),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_run_accounts_account ON run_accounts(account);
`
