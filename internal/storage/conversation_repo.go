package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ConversationStore defines the interface for conversation operations.
type ConversationStore interface {
	Insert(ctx context.Context, c *ConversationRecord) error
	ListByCorpus(ctx context.Context, corpusID string) ([]*ConversationRecord, error)
}

// MessageStore defines the interface for message operations.
type MessageStore interface {
	Insert(ctx context.Context, m *MessageRecord) error
	ListByConversation(ctx context.Context, conversationID string) ([]*MessageRecord, error)
}

// VoteStore defines the interface for message vote operations.
type VoteStore interface {
	Insert(ctx context.Context, v *VoteRecord) error
	ListByMessage(ctx context.Context, messageID string) ([]*VoteRecord, error)
}

// ConversationRepo provides methods for conversation operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Insert inserts a new conversation. A zero CreatedAt is filled by the
// database; a non-zero one is preserved.
func (r *ConversationRepo) Insert(ctx context.Context, c *ConversationRecord) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	createdAt := any(nil)
	if !c.CreatedAt.IsZero() {
		createdAt = formatDBTime(c.CreatedAt)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversations (id, corpus_id, title, creator_id, created_at)
		 VALUES (?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		c.ID, c.CorpusID, c.Title, nullable(c.CreatorID), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	return nil
}

// ListByCorpus returns a corpus's conversations in creation order.
func (r *ConversationRepo) ListByCorpus(ctx context.Context, corpusID string) ([]*ConversationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, corpus_id, title, creator_id, created_at
		 FROM conversations WHERE corpus_id = ? ORDER BY created_at, id`,
		corpusID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var conversations []*ConversationRecord
	for rows.Next() {
		var c ConversationRecord
		var creatorID sql.NullString
		var createdAt string

		if err := rows.Scan(&c.ID, &c.CorpusID, &c.Title, &creatorID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}

		c.CreatorID = strOf(creatorID)
		c.CreatedAt, err = parseDBTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		conversations = append(conversations, &c)
	}

	return conversations, rows.Err()
}

// MessageRepo provides methods for message operations.
// It implements the MessageStore interface.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Insert inserts a new message. A zero CreatedAt is filled by the database;
// a non-zero one is preserved.
func (r *MessageRepo) Insert(ctx context.Context, m *MessageRecord) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	createdAt := any(nil)
	if !m.CreatedAt.IsZero() {
		createdAt = formatDBTime(m.CreatedAt)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, content, msg_type, creator_id, created_at)
		 VALUES (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		m.ID, m.ConversationID, m.Content, m.MsgType, nullable(m.CreatorID), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// ListByConversation returns a conversation's messages in creation order.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, content, msg_type, creator_id, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at, id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*MessageRecord
	for rows.Next() {
		var m MessageRecord
		var creatorID sql.NullString
		var createdAt string

		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Content, &m.MsgType, &creatorID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		m.CreatorID = strOf(creatorID)
		m.CreatedAt, err = parseDBTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

// VoteRepo provides methods for message vote operations.
// It implements the VoteStore interface.
type VoteRepo struct {
	db *sql.DB
}

// NewVoteRepo creates a new VoteRepo.
func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Insert inserts a new vote.
func (r *VoteRepo) Insert(ctx context.Context, v *VoteRecord) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO message_votes (id, message_id, upvote, creator_id) VALUES (?, ?, ?, ?)",
		v.ID, v.MessageID, v.Upvote, nullable(v.CreatorID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	return nil
}

// ListByMessage returns a message's votes.
func (r *VoteRepo) ListByMessage(ctx context.Context, messageID string) ([]*VoteRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, message_id, upvote, creator_id FROM message_votes WHERE message_id = ? ORDER BY id",
		messageID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var votes []*VoteRecord
	for rows.Next() {
		var v VoteRecord
		var creatorID sql.NullString

		if err := rows.Scan(&v.ID, &v.MessageID, &v.Upvote, &creatorID); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}

		v.CreatorID = strOf(creatorID)
		votes = append(votes, &v)
	}

	return votes, rows.Err()
}
