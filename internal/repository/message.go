package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/goalcoach/internal/model"
)

var (
	ErrMessageNotFound = errors.New("message not found")
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ByID(ctx context.Context, userID, goalID, messageID string) (*model.Message, error)
	History(ctx context.Context, userID, goalID string, limit int) ([]*model.Message, error)
	UpdateContentIfUnchanged(ctx context.Context, messageID, previous, content string) (bool, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `INSERT INTO messages (id, user_id, goal_id, role, content, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.UserID,
		message.GoalID,
		message.Role,
		message.Content,
		message.CreatedAt,
	)

	return err
}

func (r *messageRepository) ByID(ctx context.Context, userID, goalID, messageID string) (*model.Message, error) {
	message := &model.Message{}
	query := `SELECT * FROM messages WHERE id = $1 AND goal_id = $2 AND user_id = $3`

	err := r.db.GetContext(ctx, message, query, messageID, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	return message, nil
}

// History returns the most recent limit messages of a goal in ascending
// order. A limit of zero or less returns all of them.
func (r *messageRepository) History(ctx context.Context, userID, goalID string, limit int) ([]*model.Message, error) {
	messages := []*model.Message{}

	var err error
	if limit <= 0 {
		query := `SELECT * FROM messages WHERE goal_id = $1 AND user_id = $2 ORDER BY created_at ASC`
		err = r.db.SelectContext(ctx, &messages, query, goalID, userID)
	} else {
		query := `SELECT * FROM (
		              SELECT * FROM messages WHERE goal_id = $1 AND user_id = $2
		              ORDER BY created_at DESC LIMIT $3
		          ) AS recent ORDER BY created_at ASC`
		err = r.db.SelectContext(ctx, &messages, query, goalID, userID, limit)
	}
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// UpdateContentIfUnchanged replaces the content only while it still equals
// previous. It reports whether the row was written.
func (r *messageRepository) UpdateContentIfUnchanged(ctx context.Context, messageID, previous, content string) (bool, error) {
	query := `UPDATE messages SET content = $1 WHERE id = $2 AND content = $3`

	result, err := r.db.ExecContext(ctx, query, content, messageID, previous)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
