package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parley-chat/parley/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Append inserts the message and advances the conversation's last-message
// timestamp in one transaction, so a reader never observes one without the
// other. GREATEST keeps the timestamp monotonic even if two racing appends
// carry skewed clocks.
func (r *MessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, type, content,
			attachment_ref, attachment_name, attachment_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Type, msg.Content,
		msg.AttachmentRef, msg.AttachmentName, msg.AttachmentType, msg.CreatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversations
		SET last_message_at = GREATEST(COALESCE(last_message_at, 'epoch'::timestamptz), $2)
		WHERE id = $1`,
		msg.ConversationID, msg.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, conversation_id, sender_id, type, content,
			attachment_ref, attachment_name, attachment_type, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.Type, &m.Content,
			&m.AttachmentRef, &m.AttachmentName, &m.AttachmentType, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) LatestByConversation(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	var m domain.Message
	err := r.pool.QueryRow(ctx,
		`SELECT id, conversation_id, sender_id, type, content,
			attachment_ref, attachment_name, attachment_type, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, conversationID,
	).Scan(
		&m.ID, &m.ConversationID, &m.SenderID, &m.Type, &m.Content,
		&m.AttachmentRef, &m.AttachmentName, &m.AttachmentType, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
