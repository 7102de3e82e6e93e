package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sona-ai/sona/pkg/models"
)

// Store is the conversation-log collaborator, backed by SQLite.
type Store struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	response TEXT NOT NULL,
	images TEXT,
	tags TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_conversations_created ON conversations(created_at);
`

// New opens the conversation database and runs auto-migration.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Store{db: db}, nil
}

// Append records one question/response exchange. A missing ID or
// timestamp is filled in.
func (s *Store) Append(ctx context.Context, conv models.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	images, err := marshalList(conv.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	tags, err := marshalList(conv.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, question, response, images, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.Question, conv.Response, images, tags, conv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

// Recent returns the n most recent conversations, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]models.Conversation, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, response, images, tags, created_at
		 FROM conversations ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

// Search returns conversations whose question, response, or tags match
// the given text, newest first.
func (s *Store) Search(ctx context.Context, text string) ([]models.Conversation, error) {
	pattern := "%" + text + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, response, images, tags, created_at
		 FROM conversations
		 WHERE question LIKE ? OR response LIKE ? OR tags LIKE ?
		 ORDER BY created_at DESC, rowid DESC`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search conversations: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

// Count returns the total number of stored conversations.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanConversations(rows *sql.Rows) ([]models.Conversation, error) {
	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		var images, tags sql.NullString
		if err := rows.Scan(&c.ID, &c.Question, &c.Response, &images, &tags, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		if images.Valid && images.String != "" {
			_ = json.Unmarshal([]byte(images.String), &c.Images)
		}
		if tags.Valid && tags.String != "" {
			_ = json.Unmarshal([]byte(tags.String), &c.Tags)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func marshalList(list []string) (sql.NullString, error) {
	if len(list) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
