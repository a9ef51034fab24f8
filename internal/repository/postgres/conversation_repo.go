package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/repository"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var directKey *string
	if conv.Type == domain.ConversationDirect {
		key := domain.DirectKey(conv.Participants[0], conv.Participants[1])
		directKey = &key
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO conversations (id, name, type, created_by, direct_key, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		conv.ID, conv.Name, conv.Type, conv.CreatedBy, directKey, conv.LastMessageAt, conv.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return err
	}

	for i, userID := range conv.Participants {
		if _, err := tx.Exec(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id, position)
			VALUES ($1, $2, $3)`,
			conv.ID, userID, i,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, type, created_by, last_message_at, created_at
		FROM conversations WHERE id = $1`, id,
	).Scan(&conv.ID, &conv.Name, &conv.Type, &conv.CreatedBy, &conv.LastMessageAt, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if conv.Participants, err = r.participants(ctx, conv.ID); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepo) GetDirectByKey(ctx context.Context, key string) (*domain.Conversation, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM conversations WHERE direct_key = $1`, key,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ListByParticipant returns the user's conversations ordered by last
// activity, most recent first; conversations without messages sort last.
func (r *ConversationRepo) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.type, c.created_by, c.last_message_at, c.created_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = $1
		ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.Name, &conv.Type, &conv.CreatedBy,
			&conv.LastMessageAt, &conv.CreatedAt,
		); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range convs {
		if convs[i].Participants, err = r.participants(ctx, convs[i].ID); err != nil {
			return nil, err
		}
	}
	return convs, nil
}

func (r *ConversationRepo) participants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM conversation_participants
		WHERE conversation_id = $1 ORDER BY position`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
