package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/repository/common"
)

var ErrOfferNotFound = errors.New("offer not found")

// OfferFilter narrows the per-user offer listing.
type OfferFilter struct {
	Status string
	Type   string
	Limit  int
	Offset int
}

// OfferRepository owns the offers table.
type OfferRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	query := `
		INSERT INTO offers (
			id, conversation_id, sender_id, recipient_id, type,
			service_name, description, price, currency, delivery_days,
			revisions, deliverables, terms, valid_until, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		offer.ID, offer.ConversationID, offer.SenderID, offer.RecipientID, offer.Type,
		offer.ServiceName, offer.Description, offer.Price, offer.Currency, offer.DeliveryDays,
		offer.Revisions, pq.Array([]string(offer.Deliverables)), offer.Terms, offer.ValidUntil, offer.Status,
	).Scan(&offer.CreatedAt, &offer.UpdatedAt); err != nil {
		return fmt.Errorf("offer repository: create %w", err)
	}
	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	return common.GetByID[models.Offer](ctx, r.db, "offers", id, ErrOfferNotFound)
}

// Update persists a state transition (status, counter fields, applied terms).
func (r *OfferRepository) Update(ctx context.Context, offer *models.Offer) error {
	query := `
		UPDATE offers SET
			price = $1, delivery_days = $2, revisions = $3, terms = $4,
			status = $5,
			counter_price = $6, counter_delivery_days = $7, counter_revisions = $8,
			counter_terms = $9, counter_message = $10, countered_at = $11,
			responded_at = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		offer.Price, offer.DeliveryDays, offer.Revisions, offer.Terms,
		offer.Status,
		offer.CounterPrice, offer.CounterDeliveryDays, offer.CounterRevisions,
		offer.CounterTerms, offer.CounterMessage, offer.CounteredAt,
		offer.RespondedAt, offer.ID,
	).Scan(&offer.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOfferNotFound
	}
	if err != nil {
		return fmt.Errorf("offer repository: update %w", err)
	}
	return nil
}

func (r *OfferRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	query := `SELECT * FROM offers WHERE conversation_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &offers, query, conversationID); err != nil {
		return nil, fmt.Errorf("offer repository: list by conversation %w", err)
	}
	return offers, nil
}

// ListForUser returns offers where the user is sender or recipient,
// optionally filtered by status and type.
func (r *OfferRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter OfferFilter) ([]models.Offer, error) {
	query := `SELECT * FROM offers WHERE (sender_id = $1 OR recipient_id = $1)`
	args := []interface{}{userID}
	argIndex := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, filter.Type)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	var offers []models.Offer
	if err := r.db.SelectContext(ctx, &offers, query, args...); err != nil {
		return nil, fmt.Errorf("offer repository: list for user %w", err)
	}
	return offers, nil
}

// DeleteExpiredPending is the TTL sweep: it removes pending and countered
// offers whose validity deadline has passed.
func (r *OfferRepository) DeleteExpiredPending(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM offers
		WHERE status IN ($1, $2) AND valid_until < NOW()
	`, models.OfferStatusPending, models.OfferStatusCountered)
	if err != nil {
		return 0, fmt.Errorf("offer repository: delete expired pending %w", err)
	}
	return result.RowsAffected()
}
