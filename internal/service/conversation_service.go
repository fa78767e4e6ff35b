package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/logger"
	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
	"github.com/ankitsaini000/rwew-sub007/internal/validation"
)

// ConversationRepository is the storage dependency of ConversationService.
type ConversationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	GetOrCreate(ctx context.Context, brandID, creatorID uuid.UUID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
}

// MessageBroadcaster fans a message out to the conversation's live sockets.
type MessageBroadcaster interface {
	BroadcastToConversation(conversationID uuid.UUID, event string, data any) error
}

// ConversationService manages brand/creator conversations and their messages.
type ConversationService struct {
	repo        ConversationRepository
	users       UserGetter
	broadcaster MessageBroadcaster
}

func NewConversationService(repo ConversationRepository, users UserGetter, broadcaster MessageBroadcaster) *ConversationService {
	return &ConversationService{repo: repo, users: users, broadcaster: broadcaster}
}

// Start opens (or returns) the conversation between the caller and the
// counterparty. There is one conversation per brand/creator pair.
func (s *ConversationService) Start(ctx context.Context, callerID uuid.UUID, callerRole string, otherID uuid.UUID) (*models.Conversation, error) {
	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if other.Role == callerRole {
		return nil, apperror.New(apperror.ErrCodeValidation, "conversations go between a brand and a creator")
	}

	brandID, creatorID := callerID, otherID
	if callerRole == models.RoleCreator {
		brandID, creatorID = otherID, callerID
	}
	return s.repo.GetOrCreate(ctx, brandID, creatorID)
}

// Get returns one conversation to its participants or an admin.
func (s *ConversationService) Get(ctx context.Context, conversationID, callerID uuid.UUID, callerRole string) (*models.Conversation, error) {
	conversation, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, err
	}
	if !conversation.IsParticipant(callerID) && callerRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return conversation, nil
}

// List returns the caller's conversations.
func (s *ConversationService) List(ctx context.Context, callerID uuid.UUID) ([]models.Conversation, error) {
	return s.repo.ListForUser(ctx, callerID)
}

// SendMessage persists a message from a participant and broadcasts it to
// the conversation room.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if err := validation.ValidateLength("message", body, 1, 5000); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	conversation, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, err
	}
	if !conversation.IsParticipant(senderID) {
		return nil, apperror.ErrForbidden
	}

	msg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		AuthorID:       senderID,
		Content:        body,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastToConversation(conversationID, "new_message", msg); err != nil {
			logger.Log.WithField("conversation_id", conversationID).WithError(err).Warn("conversation: broadcast failed")
		}
	}
	logger.Log.WithField("conversation_id", conversationID).Debug("conversation: message sent")
	return msg, nil
}

// ListMessages pages through a conversation's history, newest first.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID, callerID uuid.UUID, callerRole string, limit, offset int) ([]models.Message, error) {
	if _, err := s.Get(ctx, conversationID, callerID, callerRole); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}
