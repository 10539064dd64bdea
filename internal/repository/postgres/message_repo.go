package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swaploop/swaploop/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `id, swap_id, sender_id, recipient_id, content, ts, is_read, message_type, event_type, metadata`

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, swap_id, sender_id, recipient_id, content, ts, is_read, message_type, event_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.SwapID, msg.SenderID, msg.RecipientID, msg.Content,
		msg.Timestamp, msg.IsRead, msg.Type, string(msg.EventType), msg.Metadata,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, swapID, messageID string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE swap_id = $1 AND id = $2`
	msg, err := scanMessage(r.pool.QueryRow(ctx, query, swapID, messageID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return msg, err
}

func (r *MessageRepo) ListBySwap(ctx context.Context, swapID string) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE swap_id = $1 ORDER BY ts ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, swapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) MarkRead(ctx context.Context, swapID, messageID, recipientID string) (*domain.Message, error) {
	// Idempotent: an already-read row still matches and is returned as-is.
	query := `
		UPDATE messages SET is_read = TRUE
		WHERE swap_id = $1 AND id = $2 AND recipient_id = $3
		RETURNING ` + messageColumns
	msg, err := scanMessage(r.pool.QueryRow(ctx, query, swapID, messageID, recipientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return msg, err
}

func (r *MessageRepo) CountUnread(ctx context.Context, userID string) (*domain.UnreadCounts, error) {
	query := `
		SELECT swap_id, COUNT(*)
		FROM messages
		WHERE recipient_id = $1 AND is_read = FALSE
		GROUP BY swap_id
		ORDER BY swap_id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := &domain.UnreadCounts{Swaps: []domain.SwapUnread{}}
	for rows.Next() {
		var su domain.SwapUnread
		if err := rows.Scan(&su.SwapID, &su.Count); err != nil {
			return nil, err
		}
		counts.Swaps = append(counts.Swaps, su)
		counts.Count += su.Count
	}
	return counts, rows.Err()
}

func (r *MessageRepo) Delete(ctx context.Context, swapID, messageID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE swap_id = $1 AND id = $2`, swapID, messageID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var msg domain.Message
	var eventType *string
	err := row.Scan(
		&msg.ID, &msg.SwapID, &msg.SenderID, &msg.RecipientID, &msg.Content,
		&msg.Timestamp, &msg.IsRead, &msg.Type, &eventType, &msg.Metadata,
	)
	if err != nil {
		return nil, err
	}
	if eventType != nil {
		msg.EventType = domain.SystemEvent(*eventType)
	}
	return &msg, nil
}
