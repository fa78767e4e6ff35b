package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
)

type mockVerificationRepo struct {
	mock.Mock
}

func (m *mockVerificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationRecord), args.Error(1)
}

func (m *mockVerificationRepo) GetByUser(ctx context.Context, userID uuid.UUID, role string) (*models.VerificationRecord, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationRecord), args.Error(1)
}

func (m *mockVerificationRepo) Create(ctx context.Context, record *models.VerificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockVerificationRepo) Update(ctx context.Context, record *models.VerificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockVerificationRepo) ListByOverallStatus(ctx context.Context, overallStatus string, limit, offset int) ([]models.VerificationRecord, error) {
	args := m.Called(ctx, overallStatus, limit, offset)
	return args.Get(0).([]models.VerificationRecord), args.Error(1)
}

func (m *mockVerificationRepo) CountByOverallStatus(ctx context.Context, overallStatus string) (int, error) {
	args := m.Called(ctx, overallStatus)
	return args.Int(0), args.Error(1)
}

type mockMailSender struct {
	mock.Mock
}

func (m *mockMailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

type mockSMSSender struct {
	mock.Mock
}

func (m *mockSMSSender) Send(ctx context.Context, to, text string) error {
	args := m.Called(ctx, to, text)
	return args.Error(0)
}

type mockDocumentStore struct {
	mock.Mock
}

func (m *mockDocumentStore) Save(ctx context.Context, userID uuid.UUID, folder, originalName string, r io.Reader) (string, error) {
	args := m.Called(ctx, userID, folder, originalName, r)
	return args.String(0), args.Error(1)
}

func (m *mockDocumentStore) Delete(ctx context.Context, publicURL string) error {
	args := m.Called(ctx, publicURL)
	return args.Error(0)
}

func newVerificationService(repo *mockVerificationRepo, email *mockMailSender, smsSender *mockSMSSender, store *mockDocumentStore) *VerificationService {
	return NewVerificationService(repo, email, smsSender, store, nil)
}

func TestVerificationService_Get_NotFound(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(nil, repository.ErrVerificationNotFound)

	_, err := svc.Get(ctx, userID, models.RoleCreator)
	assert.ErrorIs(t, err, apperror.ErrVerificationNotFound)
}

func TestVerificationService_GetOrCreate_CreatesOnFirstUse(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	repo.On("GetByUser", ctx, userID, models.RoleBrand).Return(nil, repository.ErrVerificationNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(r *models.VerificationRecord) bool {
		return r.UserID == userID && r.Role == models.RoleBrand &&
			r.IdentityStatus == models.SubStatusNotSubmitted &&
			r.OverallStatus == models.OverallStatusPending
	})).Return(nil)

	record, err := svc.GetOrCreate(ctx, userID, models.RoleBrand)
	assert.NoError(t, err)
	assert.Equal(t, models.SubStatusNotSubmitted, record.IdentityStatus)
	repo.AssertExpectations(t)
}

func TestVerificationService_SubmitEmail_PersistsCodeThenSends(t *testing.T) {
	repo := new(mockVerificationRepo)
	email := new(mockMailSender)
	svc := newVerificationService(repo, email, new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(r *models.VerificationRecord) bool {
		return r.Email != nil && *r.Email == "creator@example.com" &&
			r.EmailCode != nil && len(*r.EmailCode) == 6 &&
			r.EmailStatus == models.SubStatusPending
	})).Return(nil)
	email.On("Send", ctx, "creator@example.com", mock.Anything, mock.Anything).Return(nil)

	record, err := svc.SubmitEmail(ctx, userID, models.RoleCreator, "Creator@Example.com")
	assert.NoError(t, err)
	assert.NotNil(t, record.EmailCode)
	repo.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestVerificationService_SubmitEmail_DeliveryFailureKeepsCode(t *testing.T) {
	repo := new(mockVerificationRepo)
	email := new(mockMailSender)
	svc := newVerificationService(repo, email, new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	email.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp: connection refused"))

	record, err := svc.SubmitEmail(ctx, userID, models.RoleCreator, "creator@example.com")
	assert.True(t, apperror.IsDelivery(err))
	// The code survived the failed send; a later verify still works.
	assert.NotNil(t, record)
	assert.NotNil(t, record.EmailCode)
	repo.AssertExpectations(t)
}

func TestVerificationService_VerifyEmailCode_Success(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	addr := "creator@example.com"
	code := "123456"
	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	existing.Email = &addr
	existing.EmailCode = &code

	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(r *models.VerificationRecord) bool {
		return r.EmailStatus == models.SubStatusVerified && r.EmailCode == nil
	})).Return(nil)

	record, err := svc.VerifyEmailCode(ctx, userID, models.RoleCreator, addr, code)
	assert.NoError(t, err)
	assert.Equal(t, models.SubStatusVerified, record.EmailStatus)
	assert.NotNil(t, record.EmailVerifiedAt)
	repo.AssertExpectations(t)
}

func TestVerificationService_VerifyEmailCode_WrongCodeDoesNotMutate(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	addr := "creator@example.com"
	code := "123456"
	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	existing.Email = &addr
	existing.EmailCode = &code

	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)

	_, err := svc.VerifyEmailCode(ctx, userID, models.RoleCreator, addr, "654321")
	assert.ErrorIs(t, err, apperror.ErrInvalidCode)
	assert.Equal(t, models.SubStatusPending, existing.EmailStatus)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestVerificationService_VerifyEmailCode_DifferentAddressRejected(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	addr := "creator@example.com"
	code := "123456"
	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	existing.Email = &addr
	existing.EmailCode = &code

	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)

	_, err := svc.VerifyEmailCode(ctx, userID, models.RoleCreator, "other@example.com", code)
	assert.ErrorIs(t, err, apperror.ErrInvalidCode)
}

func TestVerificationService_SubmitPhone_SendsSMS(t *testing.T) {
	repo := new(mockVerificationRepo)
	smsSender := new(mockSMSSender)
	svc := newVerificationService(repo, new(mockMailSender), smsSender, new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	smsSender.On("Send", ctx, "+919876543210", mock.MatchedBy(func(text string) bool {
		return len(text) > 6
	})).Return(nil)

	record, err := svc.SubmitPhone(ctx, userID, models.RoleCreator, "+919876543210")
	assert.NoError(t, err)
	assert.NotNil(t, record.PhoneCode)
	smsSender.AssertExpectations(t)
}

func TestVerificationService_SubmitDocument_BrandNumberOnlyGoesProcessing(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	existing := models.NewVerificationRecord(userID, models.RoleBrand)
	repo.On("GetByUser", ctx, userID, models.RoleBrand).Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(r *models.VerificationRecord) bool {
		return r.IdentityStatus == models.SubStatusProcessing &&
			r.IdentityNumber != nil && *r.IdentityNumber == "22AAAAA0000A1Z5"
	})).Return(nil)

	record, err := svc.SubmitDocument(ctx, userID, models.RoleBrand, models.VerificationFieldGST, "22aaaaa0000a1z5", nil)
	assert.NoError(t, err)
	assert.Equal(t, models.SubStatusProcessing, record.IdentityStatus)
	repo.AssertExpectations(t)
}

func TestVerificationService_SubmitDocument_CreatorRequiresFile(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()

	_, err := svc.SubmitDocument(ctx, uuid.New(), models.RoleCreator, models.VerificationFieldIdentity, "DL-1234567890", nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestVerificationService_SubmitPaymentMethod_CardIsMasked(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(r *models.VerificationRecord) bool {
		return r.CardLast4 != nil && *r.CardLast4 == "1111" &&
			r.CardBrand != nil && *r.CardBrand == models.CardBrandVisa
	})).Return(nil)

	record, err := svc.SubmitPaymentMethod(ctx, userID, models.RoleCreator, models.VerificationFieldCard, "4111 1111 1111 1111")
	assert.NoError(t, err)
	assert.Equal(t, models.SubStatusPending, record.CardStatus)
	repo.AssertExpectations(t)
}

func TestVerificationService_ConfirmPaymentMethod_CompletesAggregate(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	existing.EmailStatus = models.SubStatusVerified
	existing.PhoneStatus = models.SubStatusVerified
	existing.PANStatus = models.SubStatusVerified
	existing.IdentityStatus = models.SubStatusVerified
	existing.UPIStatus = models.SubStatusPending
	existing.Recompute()
	assert.Equal(t, models.OverallStatusPending, existing.OverallStatus)

	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	record, err := svc.ConfirmPaymentMethod(ctx, userID, models.RoleCreator, models.VerificationFieldUPI, true)
	assert.NoError(t, err)
	assert.Equal(t, models.SubStatusVerified, record.UPIStatus)
	assert.Equal(t, models.OverallStatusVerified, record.OverallStatus)
}

func TestVerificationService_ConfirmPaymentMethod_RejectionClearsTimestamp(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	userID := uuid.New()

	verifiedAt := time.Now().Add(-time.Hour)
	existing := models.NewVerificationRecord(userID, models.RoleCreator)
	existing.UPIStatus = models.SubStatusVerified
	existing.UPIVerifiedAt = &verifiedAt

	repo.On("GetByUser", ctx, userID, models.RoleCreator).Return(existing, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	record, err := svc.ConfirmPaymentMethod(ctx, userID, models.RoleCreator, models.VerificationFieldUPI, false)
	assert.NoError(t, err)
	assert.Equal(t, models.SubStatusRejected, record.UPIStatus)
	assert.Nil(t, record.UPIVerifiedAt)
}

func TestVerificationService_AdminOverride_StampsReviewer(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()
	recordID := uuid.New()
	reviewerID := uuid.New()

	existing := models.NewVerificationRecord(uuid.New(), models.RoleCreator)
	existing.ID = recordID

	repo.On("GetByID", ctx, recordID).Return(existing, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	reason := "document unreadable"
	record, err := svc.AdminOverride(ctx, recordID, models.VerificationFieldPAN, models.SubStatusRejected, &reason, reviewerID)
	assert.NoError(t, err)
	assert.Equal(t, models.SubStatusRejected, record.PANStatus)
	assert.Equal(t, models.OverallStatusRejected, record.OverallStatus)
	assert.Equal(t, &reviewerID, record.ReviewedBy)
	assert.NotNil(t, record.ReviewedAt)
}

func TestVerificationService_AdminOverride_RejectsIllegalStatus(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo, new(mockMailSender), new(mockSMSSender), new(mockDocumentStore))
	ctx := context.Background()

	_, err := svc.AdminOverride(ctx, uuid.New(), models.VerificationFieldEmail, models.SubStatusNotSubmitted, nil, uuid.New())
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
