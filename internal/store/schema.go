package store

// A keg (package + version directory in the Cellar) never changes once
// installed, so its executable list can be cached indefinitely.
const schema = `
CREATE TABLE IF NOT EXISTS kegs (
    package TEXT NOT NULL,
    version TEXT NOT NULL,
    executables TEXT NOT NULL,
    scanned_at TIMESTAMP NOT NULL,
    PRIMARY KEY (package, version)
);

CREATE TABLE IF NOT EXISTS findings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_at TIMESTAMP NOT NULL,
    executable TEXT NOT NULL,
    package TEXT NOT NULL,
    installed_version TEXT NOT NULL,
    current_version TEXT NOT NULL,
    pinned BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_findings_run_at ON findings(run_at);
`
