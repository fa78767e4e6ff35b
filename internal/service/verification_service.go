package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ankitsaini000/rwew-sub007/internal/logger"
	"github.com/ankitsaini000/rwew-sub007/internal/mail"
	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
	"github.com/ankitsaini000/rwew-sub007/internal/sms"
	"github.com/ankitsaini000/rwew-sub007/internal/validation"
)

// VerificationRepository is the storage dependency of VerificationService.
type VerificationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRecord, error)
	GetByUser(ctx context.Context, userID uuid.UUID, role string) (*models.VerificationRecord, error)
	Create(ctx context.Context, record *models.VerificationRecord) error
	Update(ctx context.Context, record *models.VerificationRecord) error
	ListByOverallStatus(ctx context.Context, overallStatus string, limit, offset int) ([]models.VerificationRecord, error)
	CountByOverallStatus(ctx context.Context, overallStatus string) (int, error)
}

// DocumentStore uploads a verification document and returns its public URL.
type DocumentStore interface {
	Save(ctx context.Context, userID uuid.UUID, folder, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// VerificationNotifier pushes verification updates to connected clients.
type VerificationNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// DocumentUpload carries an uploaded file for a document submission.
// File may be nil when a brand submits a number without re-uploading.
type DocumentUpload struct {
	FileName string
	File     io.Reader
}

// VerificationService owns the per-user verification sub-state and
// recomputes the aggregate on every save.
type VerificationService struct {
	repo     VerificationRepository
	email    mail.Sender
	sms      sms.Sender
	store    DocumentStore
	notifier VerificationNotifier
}

func NewVerificationService(repo VerificationRepository, email mail.Sender, smsSender sms.Sender, store DocumentStore, notifier VerificationNotifier) *VerificationService {
	return &VerificationService{
		repo:     repo,
		email:    email,
		sms:      smsSender,
		store:    store,
		notifier: notifier,
	}
}

// Get is a strict read: it reports NotFound when the user has not started
// verification yet and never writes.
func (s *VerificationService) Get(ctx context.Context, userID uuid.UUID, role string) (*models.VerificationRecord, error) {
	record, err := s.repo.GetByUser(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.ErrVerificationNotFound
		}
		return nil, err
	}
	return record, nil
}

// GetOrCreate returns the record, creating a fresh all-pending one on first
// use. Submission paths go through here.
func (s *VerificationService) GetOrCreate(ctx context.Context, userID uuid.UUID, role string) (*models.VerificationRecord, error) {
	record, err := s.repo.GetByUser(ctx, userID, role)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, repository.ErrVerificationNotFound) {
		return nil, err
	}
	record = models.NewVerificationRecord(userID, role)
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// SubmitEmail regenerates the one-time code, persists it, then dispatches
// it. A delivery failure is reported to the caller, but the code stays
// persisted so a later resend or verify still works.
func (s *VerificationService) SubmitEmail(ctx context.Context, userID uuid.UUID, role, email string) (*models.VerificationRecord, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	email = strings.ToLower(strings.TrimSpace(email))

	record, err := s.GetOrCreate(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	code := generateCode()
	now := time.Now()
	record.Email = &email
	record.EmailCode = &code
	record.EmailCodeIssuedAt = &now
	record.EmailStatus = models.SubStatusPending
	record.EmailVerifiedAt = nil
	record.EmailRejectReason = nil
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p>", code)
	if err := s.email.Send(ctx, email, "Verify your email", body); err != nil {
		logger.Log.WithFields(logrus.Fields{"user_id": userID, "error": err}).Error("verification: email delivery failed")
		return record, apperror.Wrap(err, apperror.ErrCodeDelivery, "verification code saved but email delivery failed")
	}

	return record, nil
}

// VerifyEmailCode succeeds only when both the stored email and the stored
// code match exactly. Codes do not expire by time.
func (s *VerificationService) VerifyEmailCode(ctx context.Context, userID uuid.UUID, role, email, code string) (*models.VerificationRecord, error) {
	record, err := s.repo.GetByUser(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.ErrVerificationNotFound
		}
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if record.Email == nil || *record.Email != email ||
		record.EmailCode == nil || *record.EmailCode != code {
		return nil, apperror.ErrInvalidCode
	}

	now := time.Now()
	record.EmailStatus = models.SubStatusVerified
	record.EmailVerifiedAt = &now
	record.EmailCode = nil
	record.EmailCodeIssuedAt = nil
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.notifyUpdated(record)
	return record, nil
}

// SubmitPhone mirrors SubmitEmail over the SMS collaborator.
func (s *VerificationService) SubmitPhone(ctx context.Context, userID uuid.UUID, role, phone string) (*models.VerificationRecord, error) {
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	phone = strings.TrimSpace(phone)

	record, err := s.GetOrCreate(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	code := generateCode()
	now := time.Now()
	record.Phone = &phone
	record.PhoneCode = &code
	record.PhoneCodeIssuedAt = &now
	record.PhoneStatus = models.SubStatusPending
	record.PhoneVerifiedAt = nil
	record.PhoneRejectReason = nil
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	if err := s.sms.Send(ctx, phone, "Your verification code is "+code); err != nil {
		logger.Log.WithFields(logrus.Fields{"user_id": userID, "error": err}).Error("verification: sms delivery failed")
		return record, apperror.Wrap(err, apperror.ErrCodeDelivery, "verification code saved but sms delivery failed")
	}

	return record, nil
}

// VerifyPhoneCode mirrors VerifyEmailCode.
func (s *VerificationService) VerifyPhoneCode(ctx context.Context, userID uuid.UUID, role, phone, code string) (*models.VerificationRecord, error) {
	record, err := s.repo.GetByUser(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.ErrVerificationNotFound
		}
		return nil, err
	}

	phone = strings.TrimSpace(phone)
	if record.Phone == nil || *record.Phone != phone ||
		record.PhoneCode == nil || *record.PhoneCode != code {
		return nil, apperror.ErrInvalidCode
	}

	now := time.Now()
	record.PhoneStatus = models.SubStatusVerified
	record.PhoneVerifiedAt = &now
	record.PhoneCode = nil
	record.PhoneCodeIssuedAt = nil
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.notifyUpdated(record)
	return record, nil
}

// SubmitDocument uploads the document (when present), stores its URL and
// number and moves the sub-status. Creators always go to pending; a brand
// that supplies a number without a file goes to processing.
func (s *VerificationService) SubmitDocument(ctx context.Context, userID uuid.UUID, role, kind, number string, upload *DocumentUpload) (*models.VerificationRecord, error) {
	switch kind {
	case models.VerificationFieldPAN, models.VerificationFieldGST, models.VerificationFieldIdentity:
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "unknown document kind: "+kind)
	}

	if kind == models.VerificationFieldPAN {
		if err := validation.ValidatePAN(number); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	} else if err := validation.ValidateNonEmpty("document number", number); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if upload == nil && role != models.RoleBrand {
		return nil, apperror.New(apperror.ErrCodeValidation, "document file is required")
	}

	record, err := s.GetOrCreate(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	var documentURL *string
	if upload != nil {
		url, err := s.store.Save(ctx, userID, kind, upload.FileName, upload.File)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDelivery, "document upload failed")
		}
		documentURL = &url
	}

	status := models.SubStatusPending
	if role == models.RoleBrand && upload == nil {
		// Number supplied without re-upload: awaiting registry lookup.
		status = models.SubStatusProcessing
	}

	var replacedURL *string
	number = strings.ToUpper(strings.TrimSpace(number))
	switch kind {
	case models.VerificationFieldPAN:
		record.PANStatus = status
		record.PANNumber = &number
		if documentURL != nil {
			replacedURL = record.PANDocumentURL
			record.PANDocumentURL = documentURL
		}
		record.PANVerifiedAt = nil
	default: // gst for brands, identity for creators
		record.IdentityStatus = status
		record.IdentityNumber = &number
		if documentURL != nil {
			replacedURL = record.IdentityDocumentURL
			record.IdentityDocumentURL = documentURL
		}
		record.IdentityVerifiedAt = nil
	}
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	if replacedURL != nil && *replacedURL != *documentURL {
		if err := s.store.Delete(ctx, *replacedURL); err != nil {
			logger.Log.WithField("url", *replacedURL).WithError(err).Warn("verification: failed to remove replaced document")
		}
	}
	return record, nil
}

// SubmitPaymentMethod stores masked payment details at pending. The status
// flips to verified only once the gateway confirms (ConfirmPaymentMethod),
// never on a timer.
func (s *VerificationService) SubmitPaymentMethod(ctx context.Context, userID uuid.UUID, role, method, details string) (*models.VerificationRecord, error) {
	record, err := s.GetOrCreate(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	switch method {
	case models.VerificationFieldUPI:
		if err := validation.ValidateUPI(details); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		handle := strings.TrimSpace(details)
		record.UPIStatus = models.SubStatusPending
		record.UPIHandle = &handle
		record.UPIVerifiedAt = nil
	case models.VerificationFieldCard:
		last4 := models.CardLast4FromNumber(details)
		if len(last4) < 4 {
			return nil, apperror.New(apperror.ErrCodeValidation, "card number is too short")
		}
		brand := models.CardBrandFromNumber(details)
		record.CardStatus = models.SubStatusPending
		record.CardLast4 = &last4
		record.CardBrand = &brand
		record.CardVerifiedAt = nil
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "unknown payment method: "+method)
	}
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ConfirmPaymentMethod is driven by the payment gateway confirmation
// (checkout webhook). It flips the method's status and re-derives the
// aggregate.
func (s *VerificationService) ConfirmPaymentMethod(ctx context.Context, userID uuid.UUID, role, method string, ok bool) (*models.VerificationRecord, error) {
	record, err := s.repo.GetByUser(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.ErrVerificationNotFound
		}
		return nil, err
	}

	now := time.Now()
	status := models.SubStatusVerified
	if !ok {
		status = models.SubStatusRejected
	}

	switch method {
	case models.VerificationFieldUPI:
		record.UPIStatus = status
		record.UPIVerifiedAt = nil
		if ok {
			record.UPIVerifiedAt = &now
		}
	case models.VerificationFieldCard:
		record.CardStatus = status
		record.CardVerifiedAt = nil
		if ok {
			record.CardVerifiedAt = &now
		}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "unknown payment method: "+method)
	}
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.notifyUpdated(record)
	return record, nil
}

// AdminOverride sets one sub-status directly, stamping the reviewer.
func (s *VerificationService) AdminOverride(ctx context.Context, recordID uuid.UUID, field, status string, reason *string, reviewerID uuid.UUID) (*models.VerificationRecord, error) {
	if !models.ValidSubStatus(field, status) {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid status "+status+" for field "+field)
	}

	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.ErrVerificationNotFound
		}
		return nil, err
	}

	now := time.Now()
	verifiedAt := func() *time.Time {
		if status == models.SubStatusVerified {
			return &now
		}
		return nil
	}

	switch field {
	case models.VerificationFieldEmail:
		record.EmailStatus = status
		record.EmailVerifiedAt = verifiedAt()
		record.EmailRejectReason = reason
	case models.VerificationFieldPhone:
		record.PhoneStatus = status
		record.PhoneVerifiedAt = verifiedAt()
		record.PhoneRejectReason = reason
	case models.VerificationFieldPAN:
		record.PANStatus = status
		record.PANVerifiedAt = verifiedAt()
	case models.VerificationFieldGST, models.VerificationFieldIdentity:
		record.IdentityStatus = status
		record.IdentityVerifiedAt = verifiedAt()
	case models.VerificationFieldUPI:
		record.UPIStatus = status
		record.UPIVerifiedAt = verifiedAt()
	case models.VerificationFieldCard:
		record.CardStatus = status
		record.CardVerifiedAt = verifiedAt()
	default:
		return nil, apperror.New(apperror.ErrCodeNotFound, "unknown verification field: "+field)
	}

	record.ReviewedBy = &reviewerID
	record.ReviewedAt = &now
	record.Recompute()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.notifyUpdated(record)
	return record, nil
}

// ListPending returns the admin review queue.
func (s *VerificationService) ListPending(ctx context.Context, limit, offset int) ([]models.VerificationRecord, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := s.repo.ListByOverallStatus(ctx, models.OverallStatusPending, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByOverallStatus(ctx, models.OverallStatusPending)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// notifyUpdated fans out the change; delivery is best effort.
func (s *VerificationService) notifyUpdated(record *models.VerificationRecord) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(record.UserID, "verification_updated", record); err != nil {
		logger.Log.WithField("user_id", record.UserID).WithError(err).Warn("verification: notify failed")
	}
}

// generateCode returns a 6-digit numeric one-time code.
func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// an all-zero code rather than panicking the request.
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
