package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByOfferAndReviewer(ctx context.Context, offerID, reviewerID uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, offerID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByReviewedID(ctx context.Context, reviewedID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, reviewedID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetAverageRating(ctx context.Context, userID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func TestReviewService_Create_ReviewsTheOtherParty(t *testing.T) {
	repo := new(mockReviewRepo)
	offers := new(mockOfferRepo)
	svc := NewReviewService(repo, offers)
	ctx := context.Background()

	offer := acceptedOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)
	repo.On("GetByOfferAndReviewer", ctx, offer.ID, offer.SenderID).Return(nil, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.ReviewerID == offer.SenderID &&
			r.ReviewedID == offer.RecipientID &&
			r.Rating == 4
	})).Return(nil)

	review, err := svc.Create(ctx, offer.ID, offer.SenderID, 4, nil)
	assert.NoError(t, err)
	assert.Equal(t, offer.RecipientID, review.ReviewedID)
	repo.AssertExpectations(t)
}

func TestReviewService_Create_PendingOfferRejected(t *testing.T) {
	repo := new(mockReviewRepo)
	offers := new(mockOfferRepo)
	svc := NewReviewService(repo, offers)
	ctx := context.Background()

	offer := pendingOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)

	_, err := svc.Create(ctx, offer.ID, offer.SenderID, 5, nil)
	assert.True(t, apperror.IsInvalidState(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_Create_StrangerForbidden(t *testing.T) {
	repo := new(mockReviewRepo)
	offers := new(mockOfferRepo)
	svc := NewReviewService(repo, offers)
	ctx := context.Background()

	offer := acceptedOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)

	_, err := svc.Create(ctx, offer.ID, uuid.New(), 5, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestReviewService_Create_OncePerReviewer(t *testing.T) {
	repo := new(mockReviewRepo)
	offers := new(mockOfferRepo)
	svc := NewReviewService(repo, offers)
	ctx := context.Background()

	offer := acceptedOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)
	repo.On("GetByOfferAndReviewer", ctx, offer.ID, offer.RecipientID).
		Return(&models.Review{ID: uuid.New()}, nil)

	_, err := svc.Create(ctx, offer.ID, offer.RecipientID, 5, nil)
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_Create_RatingBounds(t *testing.T) {
	repo := new(mockReviewRepo)
	offers := new(mockOfferRepo)
	svc := NewReviewService(repo, offers)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), uuid.New(), 0, nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(ctx, uuid.New(), uuid.New(), 6, nil)
	assert.True(t, apperror.IsValidation(err))
	offers.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestReviewService_ListForUser_ClampsLimit(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, new(mockOfferRepo))
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListByReviewedID", ctx, userID, 20, 0).Return([]models.Review{}, nil)

	_, err := svc.ListForUser(ctx, userID, 0, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
