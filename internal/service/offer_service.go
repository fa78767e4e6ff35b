package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ankitsaini000/rwew-sub007/internal/goroutine"
	"github.com/ankitsaini000/rwew-sub007/internal/logger"
	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
)

// OfferRepository is the storage dependency of OfferService.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Offer, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter repository.OfferFilter) ([]models.Offer, error)
	DeleteExpiredPending(ctx context.Context) (int64, error)
}

// ConversationGetter resolves the conversation an offer belongs to.
type ConversationGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	GetOrCreate(ctx context.Context, brandID, creatorID uuid.UUID) (*models.Conversation, error)
}

// UserGetter is used to check the counterparty before creating an offer.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// OfferNotifier pushes offer events to connected clients: the counterparty's
// personal channel and the conversation room.
type OfferNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
	BroadcastToConversation(conversationID uuid.UUID, event string, data any) error
}

// CreateOfferInput carries the sender's proposed terms.
type CreateOfferInput struct {
	RecipientID  uuid.UUID `json:"recipient_id"`
	ServiceName  string    `json:"service_name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	DeliveryDays int       `json:"delivery_days"`
	Revisions    int       `json:"revisions"`
	Deliverables []string  `json:"deliverables"`
	Terms        *string   `json:"terms,omitempty"`
	ValidUntil   time.Time `json:"valid_until"`
}

// OfferService drives the negotiation lifecycle: create, accept, reject,
// one counter round, and expiry.
type OfferService struct {
	offers        OfferRepository
	conversations ConversationGetter
	users         UserGetter
	notifier      OfferNotifier
}

func NewOfferService(offers OfferRepository, conversations ConversationGetter, users UserGetter, notifier OfferNotifier) *OfferService {
	return &OfferService{
		offers:        offers,
		conversations: conversations,
		users:         users,
		notifier:      notifier,
	}
}

// Create builds a pending offer between the sender and the recipient,
// attaching it to their conversation (created on first contact). The offer
// direction follows the sender's role, so the counterparty must hold the
// opposite role.
func (s *OfferService) Create(ctx context.Context, senderID uuid.UUID, senderRole string, input CreateOfferInput) (*models.Offer, error) {
	recipient, err := s.users.GetByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if recipient.Role == senderRole {
		return nil, apperror.New(apperror.ErrCodeValidation, "offers go between a brand and a creator")
	}

	brandID, creatorID := senderID, input.RecipientID
	if senderRole == models.RoleCreator {
		brandID, creatorID = input.RecipientID, senderID
	}
	conversation, err := s.conversations.GetOrCreate(ctx, brandID, creatorID)
	if err != nil {
		return nil, err
	}

	offer, err := models.NewOffer(
		conversation.ID, senderID, input.RecipientID, senderRole,
		input.ServiceName, input.Description, input.Price, input.Currency,
		input.DeliveryDays, input.Revisions, input.Deliverables,
		input.Terms, input.ValidUntil,
	)
	if err != nil {
		return nil, err
	}
	if offer.ValidUntil.Before(time.Now()) {
		return nil, apperror.New(apperror.ErrCodeValidation, "validity deadline is already in the past")
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.notify(offer.RecipientID, "new_offer", offer)
	s.notifyRoom(offer.ConversationID, "new_offer", offer)
	return offer, nil
}

// GetByID returns the offer to its participants (or an admin), marking it
// expired on read when the deadline has passed.
func (s *OfferService) GetByID(ctx context.Context, offerID, callerID uuid.UUID, callerRole string) (*models.Offer, error) {
	offer, err := s.fetch(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParticipant(callerID) && callerRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.expireOnRead(ctx, offer), nil
}

// Accept resolves the offer in favour of the current proposal. On a
// countered offer the counter terms become the agreed terms.
func (s *OfferService) Accept(ctx context.Context, offerID, callerID uuid.UUID) (*models.Offer, error) {
	return s.transition(ctx, offerID, callerID, func(offer *models.Offer, now time.Time) error {
		return offer.Accept(callerID, now)
	})
}

// Reject declines the current proposal.
func (s *OfferService) Reject(ctx context.Context, offerID, callerID uuid.UUID) (*models.Offer, error) {
	return s.transition(ctx, offerID, callerID, func(offer *models.Offer, now time.Time) error {
		return offer.Reject(callerID, now)
	})
}

// Counter attaches the recipient's replacement terms; a single round.
func (s *OfferService) Counter(ctx context.Context, offerID, callerID uuid.UUID, input models.CounterTermsInput) (*models.Offer, error) {
	return s.transition(ctx, offerID, callerID, func(offer *models.Offer, now time.Time) error {
		return offer.Counter(callerID, input, now)
	})
}

func (s *OfferService) transition(ctx context.Context, offerID, callerID uuid.UUID, apply func(*models.Offer, time.Time) error) (*models.Offer, error) {
	offer, err := s.fetch(ctx, offerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := apply(offer, now); err != nil {
		if errors.Is(err, apperror.ErrOfferExpired) {
			// Lazy expiry: persist the terminal state before reporting it.
			offer.MarkExpired(now)
			if updateErr := s.offers.Update(ctx, offer); updateErr != nil {
				logger.Log.WithField("offer_id", offer.ID).WithError(updateErr).Error("offer: persisting expiry failed")
			}
		}
		return nil, err
	}

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}

	s.notify(s.counterparty(offer, callerID), "offer_updated", offer)
	s.notifyRoom(offer.ConversationID, "offer_updated", offer)
	return offer, nil
}

// ListByConversation returns the offer history of one conversation to its
// participants.
func (s *OfferService) ListByConversation(ctx context.Context, conversationID, callerID uuid.UUID, callerRole string) ([]models.Offer, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, err
	}
	if !conversation.IsParticipant(callerID) && callerRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.offers.ListByConversation(ctx, conversationID)
}

// ListForUser returns the caller's offers, filtered.
func (s *OfferService) ListForUser(ctx context.Context, userID uuid.UUID, filter repository.OfferFilter) ([]models.Offer, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.offers.ListForUser(ctx, userID, filter)
}

// RunExpirySweep periodically removes offers that sat past their deadline
// without lazy expiry ever observing them. It returns when ctx is done.
func (s *OfferService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.offers.DeleteExpiredPending(ctx)
				if err != nil {
					logger.Log.WithError(err).Error("offer: expiry sweep failed")
					continue
				}
				if removed > 0 {
					logger.Log.WithFields(logrus.Fields{"removed": removed}).Info("offer: expiry sweep")
				}
			}
		}
	})
}

func (s *OfferService) fetch(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, apperror.ErrOfferNotFound
		}
		return nil, err
	}
	return offer, nil
}

// expireOnRead persists lazy expiry when a read observes a passed deadline.
func (s *OfferService) expireOnRead(ctx context.Context, offer *models.Offer) *models.Offer {
	now := time.Now()
	if offer.Status != models.OfferStatusPending && offer.Status != models.OfferStatusCountered {
		return offer
	}
	if !offer.IsExpired(now) {
		return offer
	}
	offer.MarkExpired(now)
	if err := s.offers.Update(ctx, offer); err != nil {
		logger.Log.WithField("offer_id", offer.ID).WithError(err).Error("offer: persisting expiry failed")
	}
	return offer
}

func (s *OfferService) counterparty(offer *models.Offer, callerID uuid.UUID) uuid.UUID {
	if callerID == offer.SenderID {
		return offer.RecipientID
	}
	return offer.SenderID
}

func (s *OfferService) notify(userID uuid.UUID, event string, offer *models.Offer) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, offer); err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Warn("offer: notify failed")
	}
}

func (s *OfferService) notifyRoom(conversationID uuid.UUID, event string, offer *models.Offer) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToConversation(conversationID, event, offer); err != nil {
		logger.Log.WithField("conversation_id", conversationID).WithError(err).Warn("offer: room notify failed")
	}
}
