package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/repository/common"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository owns the conversations and messages tables.
type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	return common.GetByID[models.Conversation](ctx, r.db, "conversations", id, ErrConversationNotFound)
}

// GetOrCreate returns the conversation between a brand and a creator,
// creating it on first contact.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, brandID, creatorID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	query := `
		INSERT INTO conversations (brand_id, creator_id)
		VALUES ($1, $2)
		ON CONFLICT (brand_id, creator_id) DO UPDATE SET brand_id = EXCLUDED.brand_id
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &conv, query, brandID, creatorID); err != nil {
		return nil, fmt.Errorf("conversation repository: get or create %w", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var convs []models.Conversation
	query := `
		SELECT * FROM conversations
		WHERE brand_id = $1 OR creator_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &convs, query, userID); err != nil {
		return nil, fmt.Errorf("conversation repository: list for user %w", err)
	}
	return convs, nil
}

func (r *ConversationRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, msg.ID, msg.ConversationID, msg.AuthorID, msg.Content).
		Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("conversation repository: create message %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT * FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("conversation repository: list messages %w", err)
	}
	return messages, nil
}
