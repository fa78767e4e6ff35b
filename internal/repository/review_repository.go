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

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (offer_id, reviewer_id, reviewed_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		review.OfferID, review.ReviewerID, review.ReviewedID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt); err != nil {
		return fmt.Errorf("review repository: create %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return common.GetByID[models.Review](ctx, r.db, "reviews", id, ErrReviewNotFound)
}

// GetByOfferAndReviewer returns nil when the reviewer has not yet reviewed
// the offer.
func (r *ReviewRepository) GetByOfferAndReviewer(ctx context.Context, offerID, reviewerID uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT * FROM reviews WHERE offer_id = $1 AND reviewer_id = $2`
	if err := r.db.GetContext(ctx, &review, query, offerID, reviewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("review repository: get by offer and reviewer %w", err)
	}
	return &review, nil
}

func (r *ReviewRepository) ListByReviewedID(ctx context.Context, reviewedID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	query := `
		SELECT * FROM reviews
		WHERE reviewed_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &reviews, query, reviewedID, limit, offset); err != nil {
		return nil, fmt.Errorf("review repository: list by reviewed %w", err)
	}
	return reviews, nil
}

// GetAverageRating returns the average rating and review count for a user.
func (r *ReviewRepository) GetAverageRating(ctx context.Context, userID uuid.UUID) (float64, int, error) {
	var result struct {
		Avg   *float64 `db:"avg"`
		Count int      `db:"count"`
	}
	query := `SELECT AVG(rating) AS avg, COUNT(*) AS count FROM reviews WHERE reviewed_id = $1`
	if err := r.db.GetContext(ctx, &result, query, userID); err != nil {
		return 0, 0, fmt.Errorf("review repository: average rating %w", err)
	}
	if result.Avg == nil {
		return 0, 0, nil
	}
	return *result.Avg, result.Count, nil
}
