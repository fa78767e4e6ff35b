package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockAuthRepo) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newAuthService(repo *mockAuthRepo) *AuthService {
	tm := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
	return NewAuthService(repo, tm)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "newcreator@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "newcreator@example.com" &&
			u.Username == "newcreator" &&
			u.Role == models.RoleCreator &&
			u.PasswordHash != "secret-pass"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = uuid.New()
	}).Return(nil)
	repo.On("UpsertProfile", ctx, mock.MatchedBy(func(p *models.Profile) bool {
		return p.DisplayName == "newcreator"
	})).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "newcreator@example.com",
		Password: "secret-pass",
		Role:     models.RoleCreator,
	}, nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "taken@example.com").
		Return(&models.User{ID: uuid.New()}, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "taken@example.com",
		Password: "secret-pass",
		Role:     models.RoleBrand,
	}, nil)

	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_AdminRoleRejected(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "root@example.com",
		Password: "secret-pass",
		Role:     models.RoleAdmin,
	}, nil)

	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "creator@example.com",
		Role:         models.RoleCreator,
		IsActive:     true,
		PasswordHash: hashPassword(t, "secret-pass"),
	}
	repo.On("GetByEmail", ctx, "creator@example.com").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.MatchedBy(func(s *models.Session) bool {
		return s.UserID == user.ID && s.ExpiresAt.After(time.Now())
	})).Return(nil)
	repo.On("GetProfile", ctx, user.ID).Return(&models.Profile{UserID: user.ID, DisplayName: "Creator"}, nil)

	result, err := svc.Login(ctx, LoginInput{Email: "creator@example.com", Password: "secret-pass"}, map[string]string{
		"user_agent": "go-test",
		"ip":         "127.0.0.1",
	})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "creator@example.com",
		IsActive:     true,
		PasswordHash: hashPassword(t, "secret-pass"),
	}
	repo.On("GetByEmail", ctx, "creator@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "creator@example.com", Password: "wrong"}, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "creator@example.com",
		IsActive:     false,
		PasswordHash: hashPassword(t, "secret-pass"),
	}
	repo.On("GetByEmail", ctx, "creator@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "creator@example.com", Password: "secret-pass"}, nil)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "creator@example.com", Role: models.RoleCreator, IsActive: true}
	pair, _, refreshExp, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(&models.Session{
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
	}, nil)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_ExpiredSessionRemoved(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "creator@example.com", Role: models.RoleCreator}
	pair, _, _, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(&models.Session{
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)

	_, err = svc.Refresh(ctx, pair.RefreshToken, nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	repo.AssertCalled(t, "DeleteSession", ctx, pair.RefreshToken)
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)

	_, err := svc.Refresh(context.Background(), "not-a-jwt", nil)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
	repo.AssertNotCalled(t, "GetSessionByToken", mock.Anything, mock.Anything)
}
