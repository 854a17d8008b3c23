package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) Create(ctx context.Context, m *models.ChatMessage) error {
	m.ID = uuid.New()

	var recs []byte
	if m.Recommendations != nil {
		b, err := json.Marshal(m.Recommendations)
		if err != nil {
			return err
		}
		recs = b
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, recommendations)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		m.ID, m.UserID, m.Role, m.Content, recs,
	).Scan(&m.CreatedAt)
}

// ListRecent returns the user's newest messages first.
func (r *ChatRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, role, content, recommendations, created_at
		 FROM chat_messages WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.ChatMessage, 0)
	for rows.Next() {
		m := &models.ChatMessage{}
		var recs []byte
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &recs, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			if err := json.Unmarshal(recs, &m.Recommendations); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ChatRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM chat_messages WHERE user_id = $1", userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
