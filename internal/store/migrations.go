package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users: account owning every journal record",
		SQL: `
CREATE TABLE users (
    id             TEXT PRIMARY KEY CHECK (length(id) = 26),
    email          TEXT NOT NULL UNIQUE CHECK (email <> ''),
    first_name     TEXT NOT NULL DEFAULT '',
    last_name      TEXT NOT NULL DEFAULT '',
    password_hash  TEXT NOT NULL,
    is_staff       INTEGER NOT NULL DEFAULT 0,
    is_superuser   INTEGER NOT NULL DEFAULT 0,
    is_active      INTEGER NOT NULL DEFAULT 1,
    date_joined    INTEGER NOT NULL,
    last_login     INTEGER
);
`,
	},
	{
		Version:     2,
		Description: "events, timestamps: named occurrences and when they happened",
		SQL: `
CREATE TABLE events (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE timestamps (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    event_id    TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    at          INTEGER NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE INDEX idx_events_user     ON events(user_id);
CREATE INDEX idx_timestamps_user ON timestamps(user_id, at DESC);
CREATE INDEX idx_timestamps_event ON timestamps(event_id, at DESC);
`,
	},
	{
		Version:     3,
		Description: "themes, pdcs: PDCA reflection cycles",
		SQL: `
CREATE TABLE themes (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title       TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE pdcs (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    theme_id    TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
    plan        TEXT NOT NULL,
    is_done     INTEGER NOT NULL DEFAULT 0,
    check_text  TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE INDEX idx_themes_user ON themes(user_id);
CREATE INDEX idx_pdcs_user   ON pdcs(user_id, is_done);
`,
	},
	{
		Version:     4,
		Description: "weather: one reading per user per day",
		SQL: `
CREATE TABLE weather (
    id                   TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    date                 TEXT NOT NULL,
    temperature_highest  INTEGER NOT NULL CHECK (temperature_highest BETWEEN -10 AND 45),
    temperature_lowest   INTEGER NOT NULL CHECK (temperature_lowest BETWEEN -20 AND 35),
    rainy_percent        INTEGER NOT NULL CHECK (rainy_percent BETWEEN 0 AND 100),
    created_at           INTEGER NOT NULL,
    updated_at           INTEGER NOT NULL,
    UNIQUE (user_id, date)
);
`,
	},
	{
		Version:     5,
		Description: "log_titles, logs: start/finish spans",
		SQL: `
CREATE TABLE log_titles (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title       TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE logs (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title_id    TEXT NOT NULL REFERENCES log_titles(id) ON DELETE CASCADE,
    start       INTEGER NOT NULL,
    finish      INTEGER NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE INDEX idx_log_titles_user ON log_titles(user_id);
CREATE INDEX idx_logs_user       ON logs(user_id, start DESC);
`,
	},
	{
		Version:     6,
		Description: "proverbs",
		SQL: `
CREATE TABLE proverbs (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    content     TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE INDEX idx_proverbs_user ON proverbs(user_id);
`,
	},
	{
		Version:     7,
		Description: "routines, routine_stamps",
		SQL: `
CREATE TABLE routines (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    sort_order  INTEGER NOT NULL,
    name        TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE routine_stamps (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    routine_id  TEXT NOT NULL REFERENCES routines(id) ON DELETE CASCADE,
    at          INTEGER NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE INDEX idx_routines_user       ON routines(user_id, sort_order);
CREATE INDEX idx_routine_stamps_user ON routine_stamps(user_id, at DESC);
`,
	},
	{
		Version:     8,
		Description: "genres, notes: code notes with five review flags",
		SQL: `
CREATE TABLE genres (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    language    TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE notes (
    id             TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    genre_id       TEXT NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
    title          TEXT NOT NULL,
    code           TEXT NOT NULL,
    is_reviewed_1  INTEGER NOT NULL DEFAULT 0,
    is_reviewed_2  INTEGER NOT NULL DEFAULT 0,
    is_reviewed_3  INTEGER NOT NULL DEFAULT 0,
    is_reviewed_4  INTEGER NOT NULL DEFAULT 0,
    is_reviewed_5  INTEGER NOT NULL DEFAULT 0,
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL
);

CREATE INDEX idx_genres_user ON genres(user_id);
CREATE INDEX idx_notes_user  ON notes(user_id, created_at DESC);
`,
	},
	{
		Version:     9,
		Description: "concerns, nodes, node_targets: mind-graph adjacency",
		SQL: `
CREATE TABLE concerns (
    id            TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    content       TEXT NOT NULL,
    concern_type  INTEGER NOT NULL CHECK (concern_type IN (0, 1)),
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL
);

CREATE TABLE nodes (
    id          TEXT PRIMARY KEY CHECK (length(id) = 26),
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    concern_id  TEXT NOT NULL REFERENCES concerns(id) ON DELETE CASCADE,
    content     TEXT NOT NULL,
    to_root     INTEGER NOT NULL DEFAULT 0,
    node_type   INTEGER NOT NULL DEFAULT 0 CHECK (node_type IN (0, 1)),
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE node_targets (
    source_id  TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    target_id  TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    PRIMARY KEY (source_id, target_id),
    CHECK (source_id <> target_id)
);

CREATE INDEX idx_concerns_user      ON concerns(user_id);
CREATE INDEX idx_nodes_concern      ON nodes(concern_id);
CREATE INDEX idx_node_targets_target ON node_targets(target_id);
`,
	},
	{
		Version:     10,
		Description: "sessions: issued login tokens, revocable on logout",
		SQL: `
CREATE TABLE sessions (
    token_id    TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    issued_at   INTEGER NOT NULL,
    expires_at  INTEGER NOT NULL,
    revoked_at  INTEGER,
    user_agent  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_sessions_user ON sessions(user_id, issued_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
