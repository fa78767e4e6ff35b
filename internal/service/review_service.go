package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
)

// ReviewRepository is the storage dependency of ReviewService.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByOfferAndReviewer(ctx context.Context, offerID, reviewerID uuid.UUID) (*models.Review, error)
	ListByReviewedID(ctx context.Context, reviewedID uuid.UUID, limit, offset int) ([]models.Review, error)
	GetAverageRating(ctx context.Context, userID uuid.UUID) (float64, int, error)
}

// ReviewOfferGetter resolves the offer a review refers to.
type ReviewOfferGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
}

// ReviewService manages post-collaboration feedback.
type ReviewService struct {
	repo   ReviewRepository
	offers ReviewOfferGetter
}

func NewReviewService(repo ReviewRepository, offers ReviewOfferGetter) *ReviewService {
	return &ReviewService{repo: repo, offers: offers}
}

// Create leaves a review on an accepted offer. Each participant may review
// the other party once per offer.
func (s *ReviewService) Create(ctx context.Context, offerID, reviewerID uuid.UUID, rating int, comment *string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "rating must be between 1 and 5")
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if len(trimmed) > 2000 {
			return nil, apperror.New(apperror.ErrCodeValidation, "comment must not exceed 2000 characters")
		}
		comment = &trimmed
	}

	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, apperror.ErrOfferNotFound
		}
		return nil, err
	}
	if offer.Status != models.OfferStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "only an accepted offer can be reviewed")
	}
	if !offer.IsParticipant(reviewerID) {
		return nil, apperror.ErrForbidden
	}

	existing, err := s.repo.GetByOfferAndReviewer(ctx, offerID, reviewerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "offer is already reviewed")
	}

	reviewedID := offer.SenderID
	if reviewerID == offer.SenderID {
		reviewedID = offer.RecipientID
	}

	review := &models.Review{
		OfferID:    offerID,
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Rating:     rating,
		Comment:    comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListForUser returns the reviews received by a user.
func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByReviewedID(ctx, userID, limit, offset)
}

// Rating returns a user's average rating and review count.
func (s *ReviewService) Rating(ctx context.Context, userID uuid.UUID) (float64, int, error) {
	return s.repo.GetAverageRating(ctx, userID)
}
