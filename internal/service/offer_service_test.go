package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
)

type mockOfferRepo struct {
	mock.Mock
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *mockOfferRepo) Update(ctx context.Context, offer *models.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *mockOfferRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Offer, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *mockOfferRepo) ListForUser(ctx context.Context, userID uuid.UUID, filter repository.OfferFilter) ([]models.Offer, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *mockOfferRepo) DeleteExpiredPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockConversationGetter struct {
	mock.Mock
}

func (m *mockConversationGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *mockConversationGetter) GetOrCreate(ctx context.Context, brandID, creatorID uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, brandID, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

type mockUserGetter struct {
	mock.Mock
}

func (m *mockUserGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func pendingOffer(senderID, recipientID uuid.UUID) *models.Offer {
	offer, _ := models.NewOffer(
		uuid.New(), senderID, recipientID, models.RoleBrand,
		"Campaign", "", 50000, "INR", 14, 2, nil, nil,
		time.Now().Add(72*time.Hour),
	)
	return offer
}

func TestOfferService_Create_AttachesConversation(t *testing.T) {
	offers := new(mockOfferRepo)
	conversations := new(mockConversationGetter)
	users := new(mockUserGetter)
	svc := NewOfferService(offers, conversations, users, nil)
	ctx := context.Background()

	brandID := uuid.New()
	creatorID := uuid.New()
	conversation := &models.Conversation{ID: uuid.New(), BrandID: brandID, CreatorID: creatorID}

	users.On("GetByID", ctx, creatorID).Return(&models.User{ID: creatorID, Role: models.RoleCreator}, nil)
	conversations.On("GetOrCreate", ctx, brandID, creatorID).Return(conversation, nil)
	offers.On("Create", ctx, mock.MatchedBy(func(o *models.Offer) bool {
		return o.ConversationID == conversation.ID &&
			o.Type == models.OfferTypeBrandToCreator &&
			o.Status == models.OfferStatusPending
	})).Return(nil)

	offer, err := svc.Create(ctx, brandID, models.RoleBrand, CreateOfferInput{
		RecipientID:  creatorID,
		ServiceName:  "Campaign",
		Price:        50000,
		DeliveryDays: 14,
		ValidUntil:   time.Now().Add(72 * time.Hour),
	})
	assert.NoError(t, err)
	assert.Equal(t, conversation.ID, offer.ConversationID)
	offers.AssertExpectations(t)
}

func TestOfferService_Create_SameRoleRejected(t *testing.T) {
	offers := new(mockOfferRepo)
	conversations := new(mockConversationGetter)
	users := new(mockUserGetter)
	svc := NewOfferService(offers, conversations, users, nil)
	ctx := context.Background()

	brandID := uuid.New()
	otherBrandID := uuid.New()
	users.On("GetByID", ctx, otherBrandID).Return(&models.User{ID: otherBrandID, Role: models.RoleBrand}, nil)

	_, err := svc.Create(ctx, brandID, models.RoleBrand, CreateOfferInput{
		RecipientID:  otherBrandID,
		ServiceName:  "Campaign",
		Price:        50000,
		DeliveryDays: 14,
		ValidUntil:   time.Now().Add(time.Hour),
	})
	assert.True(t, apperror.IsValidation(err))
	offers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOfferService_GetByID_NonParticipantForbidden(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockConversationGetter), new(mockUserGetter), nil)
	ctx := context.Background()

	offer := pendingOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)

	_, err := svc.GetByID(ctx, offer.ID, uuid.New(), models.RoleCreator)
	assert.True(t, apperror.IsForbidden(err))
}

func TestOfferService_GetByID_AdminMayRead(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockConversationGetter), new(mockUserGetter), nil)
	ctx := context.Background()

	offer := pendingOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)

	got, err := svc.GetByID(ctx, offer.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, offer.ID, got.ID)
}

func TestOfferService_GetByID_LazyExpiryPersisted(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockConversationGetter), new(mockUserGetter), nil)
	ctx := context.Background()

	offer := pendingOffer(uuid.New(), uuid.New())
	offer.ValidUntil = time.Now().Add(-time.Hour)

	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)
	offers.On("Update", ctx, mock.MatchedBy(func(o *models.Offer) bool {
		return o.Status == models.OfferStatusExpired
	})).Return(nil)

	got, err := svc.GetByID(ctx, offer.ID, offer.SenderID, models.RoleBrand)
	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusExpired, got.Status)
	offers.AssertExpectations(t)
}

func TestOfferService_Accept_Success(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockConversationGetter), new(mockUserGetter), nil)
	ctx := context.Background()

	offer := pendingOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)
	offers.On("Update", ctx, mock.MatchedBy(func(o *models.Offer) bool {
		return o.Status == models.OfferStatusAccepted
	})).Return(nil)

	got, err := svc.Accept(ctx, offer.ID, offer.RecipientID)
	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, got.Status)
	offers.AssertExpectations(t)
}

func TestOfferService_Accept_ExpiredPersistsTerminalState(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockConversationGetter), new(mockUserGetter), nil)
	ctx := context.Background()

	offer := pendingOffer(uuid.New(), uuid.New())
	offer.ValidUntil = time.Now().Add(-time.Minute)

	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)
	offers.On("Update", ctx, mock.MatchedBy(func(o *models.Offer) bool {
		return o.Status == models.OfferStatusExpired
	})).Return(nil)

	_, err := svc.Accept(ctx, offer.ID, offer.RecipientID)
	assert.ErrorIs(t, err, apperror.ErrOfferExpired)
	offers.AssertExpectations(t)
}

func TestOfferService_Counter_ThenSenderAccepts(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockConversationGetter), new(mockUserGetter), nil)
	ctx := context.Background()

	offer := pendingOffer(uuid.New(), uuid.New())
	offers.On("GetByID", ctx, offer.ID).Return(offer, nil)
	offers.On("Update", ctx, mock.Anything).Return(nil)

	countered, err := svc.Counter(ctx, offer.ID, offer.RecipientID, models.CounterTermsInput{
		Price: 60000, DeliveryDays: 21, Revisions: 3,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusCountered, countered.Status)

	accepted, err := svc.Accept(ctx, offer.ID, offer.SenderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, accepted.Status)
	assert.Equal(t, float64(60000), accepted.Price)
}

func TestOfferService_ListByConversation_ParticipantOnly(t *testing.T) {
	offers := new(mockOfferRepo)
	conversations := new(mockConversationGetter)
	svc := NewOfferService(offers, conversations, new(mockUserGetter), nil)
	ctx := context.Background()

	conversation := &models.Conversation{ID: uuid.New(), BrandID: uuid.New(), CreatorID: uuid.New()}
	conversations.On("GetByID", ctx, conversation.ID).Return(conversation, nil)

	_, err := svc.ListByConversation(ctx, conversation.ID, uuid.New(), models.RoleCreator)
	assert.True(t, apperror.IsForbidden(err))

	offers.On("ListByConversation", ctx, conversation.ID).Return([]models.Offer{}, nil)
	_, err = svc.ListByConversation(ctx, conversation.ID, conversation.BrandID, models.RoleBrand)
	assert.NoError(t, err)
}

func TestOfferService_NotFound(t *testing.T) {
	offers := new(mockOfferRepo)
	svc := NewOfferService(offers, new(mockConversationGetter), new(mockUserGetter), nil)
	ctx := context.Background()
	offerID := uuid.New()

	offers.On("GetByID", ctx, offerID).Return(nil, repository.ErrOfferNotFound)

	_, err := svc.Accept(ctx, offerID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrOfferNotFound)
}
