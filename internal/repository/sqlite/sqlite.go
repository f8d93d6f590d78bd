// Package sqlite implements the repository interfaces on top of
// database/sql with the pure-Go modernc.org/sqlite driver.
//
// One *DB value implements every repository interface; the service layer
// receives it through the narrower interface types.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath (":memory:" for tests), applies
// the runtime pragmas, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single connection serializes writers, which is what makes the
	// check-then-write transactions in vote.go and answer.go safe, and it
	// keeps ":memory:" databases coherent (each new connection would
	// otherwise get its own empty in-memory database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows reads concurrent with a write; foreign keys are off by
	// default in SQLite and we rely on them for referential integrity.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			username        TEXT NOT NULL UNIQUE,
			email           TEXT NOT NULL UNIQUE,
			password_hash   TEXT NOT NULL DEFAULT '',
			is_admin        INTEGER NOT NULL DEFAULT 0,
			reputation      INTEGER NOT NULL DEFAULT 0,
			bio             TEXT NOT NULL DEFAULT '',
			profile_picture TEXT NOT NULL DEFAULT '',
			github_id       INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;

		CREATE TABLE IF NOT EXISTS categories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS questions (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			content     TEXT NOT NULL,
			views       INTEGER NOT NULL DEFAULT 0,
			is_approved INTEGER NOT NULL DEFAULT 1,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL,
			user_id     TEXT NOT NULL REFERENCES users(id),
			category_id TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions(created_at);
		CREATE INDEX IF NOT EXISTS idx_questions_user_id ON questions(user_id);

		CREATE TABLE IF NOT EXISTS answers (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL,
			is_approved INTEGER NOT NULL DEFAULT 1,
			is_accepted INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL,
			user_id     TEXT NOT NULL REFERENCES users(id),
			question_id TEXT NOT NULL REFERENCES questions(id)
		);
		CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id);
		CREATE INDEX IF NOT EXISTS idx_answers_user_id ON answers(user_id);

		CREATE TABLE IF NOT EXISTS votes (
			id          TEXT PRIMARY KEY,
			vote_type   TEXT NOT NULL,
			created_at  DATETIME NOT NULL,
			user_id     TEXT NOT NULL REFERENCES users(id),
			question_id TEXT NOT NULL DEFAULT '',
			answer_id   TEXT NOT NULL DEFAULT '',
			UNIQUE (user_id, question_id, answer_id)
		);
		CREATE INDEX IF NOT EXISTS idx_votes_question_id ON votes(question_id);
		CREATE INDEX IF NOT EXISTS idx_votes_answer_id ON votes(answer_id);

		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS question_tags (
			id          TEXT PRIMARY KEY,
			question_id TEXT NOT NULL REFERENCES questions(id),
			tag_id      TEXT NOT NULL REFERENCES tags(id)
		);
		CREATE INDEX IF NOT EXISTS idx_question_tags_question_id ON question_tags(question_id);

		CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			content    TEXT NOT NULL,
			link       TEXT NOT NULL DEFAULT '',
			is_read    INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver exposes no typed error for this, so we match the
// canonical message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
