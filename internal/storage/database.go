package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS label_sets (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS labels (
			id TEXT PRIMARY KEY,
			label_set_id TEXT NOT NULL,
			text TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			label_type TEXT NOT NULL,
			FOREIGN KEY (label_set_id) REFERENCES label_sets(id),
			UNIQUE (label_set_id, text, label_type)
		);`,
		`CREATE TABLE IF NOT EXISTS corpora (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			label_set_id TEXT,
			creator_id TEXT,
			description_md TEXT NOT NULL DEFAULT '',
			corpus_agent_instructions TEXT NOT NULL DEFAULT '',
			document_agent_instructions TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (label_set_id) REFERENCES label_sets(id)
		);`,
		`CREATE TABLE IF NOT EXISTS structural_sets (
			id TEXT PRIMARY KEY,
			file_hash TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			file_name TEXT NOT NULL DEFAULT '',
			file_key TEXT NOT NULL DEFAULT '',
			file_hash TEXT NOT NULL,
			text_content TEXT NOT NULL DEFAULT '',
			structural_set_id TEXT,
			backend_lock INTEGER NOT NULL DEFAULT 0,
			creator_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (structural_set_id) REFERENCES structural_sets(id)
		);`,
		`CREATE TABLE IF NOT EXISTS annotations (
			id TEXT PRIMARY KEY,
			document_id TEXT,
			corpus_id TEXT,
			structural_set_id TEXT,
			label_id TEXT NOT NULL,
			parent_id TEXT,
			page INTEGER NOT NULL DEFAULT 0,
			raw_text TEXT NOT NULL DEFAULT '',
			bounds_json TEXT NOT NULL DEFAULT '',
			is_structural INTEGER NOT NULL DEFAULT 0,
			creator_id TEXT,
			FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE,
			FOREIGN KEY (label_id) REFERENCES labels(id)
		);`,
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			corpus_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			is_visible INTEGER NOT NULL DEFAULT 1,
			parent_id TEXT,
			path TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (corpus_id) REFERENCES corpora(id) ON DELETE CASCADE,
			FOREIGN KEY (parent_id) REFERENCES folders(id)
		);`,
		`CREATE TABLE IF NOT EXISTS version_paths (
			id TEXT PRIMARY KEY,
			corpus_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			folder_id TEXT,
			path TEXT NOT NULL,
			version_number INTEGER NOT NULL,
			parent_id TEXT,
			is_current INTEGER NOT NULL DEFAULT 0,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (corpus_id) REFERENCES corpora(id) ON DELETE CASCADE,
			FOREIGN KEY (document_id) REFERENCES documents(id),
			FOREIGN KEY (folder_id) REFERENCES folders(id),
			FOREIGN KEY (parent_id) REFERENCES version_paths(id)
		);`,
		// A lineage (corpus, document, path) holds at most one version that is
		// current and not deleted.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_version_paths_live_current
			ON version_paths(corpus_id, document_id, path)
			WHERE is_current = 1 AND is_deleted = 0;`,
		`CREATE TABLE IF NOT EXISTS relationships (
			id TEXT PRIMARY KEY,
			corpus_id TEXT,
			document_id TEXT,
			structural_set_id TEXT,
			label_id TEXT NOT NULL,
			is_structural INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (label_id) REFERENCES labels(id)
		);`,
		`CREATE TABLE IF NOT EXISTS relationship_sources (
			relationship_id TEXT NOT NULL,
			annotation_id TEXT NOT NULL,
			PRIMARY KEY (relationship_id, annotation_id),
			FOREIGN KEY (relationship_id) REFERENCES relationships(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS relationship_targets (
			relationship_id TEXT NOT NULL,
			annotation_id TEXT NOT NULL,
			PRIMARY KEY (relationship_id, annotation_id),
			FOREIGN KEY (relationship_id) REFERENCES relationships(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS description_revisions (
			id TEXT PRIMARY KEY,
			corpus_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			author_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (corpus_id) REFERENCES corpora(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			corpus_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			creator_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (corpus_id) REFERENCES corpora(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			msg_type TEXT NOT NULL DEFAULT '',
			creator_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS message_votes (
			id TEXT PRIMARY KEY,
			message_id TEXT NOT NULL,
			upvote INTEGER NOT NULL DEFAULT 1,
			creator_id TEXT,
			FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			corpus_id TEXT,
			kind TEXT NOT NULL,
			file_key TEXT NOT NULL DEFAULT '',
			include_conversations INTEGER NOT NULL DEFAULT 0,
			finished DATETIME,
			error INTEGER NOT NULL DEFAULT 0,
			backend_lock INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
