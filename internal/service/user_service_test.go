package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZenGuideTeam/zg-account-server/internal/mocks"
	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

func newTestUserService(t *testing.T) (*userService, *mocks.MockUserRepository, *mocks.MockJWTGenerator) {
	t.Helper()
	cfg := mocks.CreateTestConfig()
	repo := new(mocks.MockUserRepository)
	tokens := new(mocks.MockJWTGenerator)
	t.Cleanup(func() {
		repo.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})
	return NewUserService(repo, tokens, &cfg.Security), repo, tokens
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		created := &models.User{ID: 1, Email: "a@b.com", DisplayName: "Ada", CreatedAt: time.Now()}

		repo.On("CreateUser", mock.Anything, "a@b.com", "Ada", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")) == nil
		})).Return(created, nil).Once()

		info, err := svc.Register(ctx, models.SignUpRequest{Email: " A@B.com", Password: "password123", DisplayName: " Ada "})
		require.NoError(t, err)
		assert.Equal(t, int64(1), info.ID)
		assert.Equal(t, "a@b.com", info.Email)
	})

	t.Run("Duplicate", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("CreateUser", mock.Anything, "a@b.com", "", mock.AnythingOfType("string")).
			Return(nil, repository.ErrUserExists).Once()

		_, err := svc.Register(ctx, models.SignUpRequest{Email: "a@b.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)

		_, err := svc.Register(ctx, models.SignUpRequest{Email: "nope", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidEmail)

		_, err = svc.Register(ctx, models.SignUpRequest{Email: "a@b.com", Password: "short"})
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("CreateUser", mock.Anything, "a@b.com", "", mock.AnythingOfType("string")).
			Return(nil, errors.New("db down")).Once()

		_, err := svc.Register(ctx, models.SignUpRequest{Email: "a@b.com", Password: "password123"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserExists)
	})
}

func TestUserService_CheckEmailExists(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestUserService(t)

	repo.On("CheckIfUserExists", mock.Anything, "a@b.com").Return(true, nil).Once()
	exists, err := svc.CheckEmailExists(ctx, " A@b.com ")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = svc.CheckEmailExists(ctx, "invalid")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: 9, Email: "a@b.com", PasswordHash: hash}

	t.Run("Success", func(t *testing.T) {
		svc, repo, tokens := newTestUserService(t)
		exp := time.Now().Add(time.Hour)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()
		tokens.On("GenerateToken", user).Return("access-token", exp, nil).Once()

		resp, err := svc.Login(ctx, "A@B.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "access-token", resp.Token)
		assert.Equal(t, exp, resp.ExpiresAt)
		assert.Equal(t, int64(9), resp.User.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()

		_, err := svc.Login(ctx, "a@b.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "x@b.com").Return(nil, repository.ErrUserNotFound).Once()

		_, err := svc.Login(ctx, "x@b.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("NoCredential", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(&models.User{ID: 9, Email: "a@b.com"}, nil).Once()

		_, err := svc.Login(ctx, "a@b.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(nil, errors.New("db down")).Once()

		_, err := svc.Login(ctx, "a@b.com", "password123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestUserService(t)

	repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(&models.User{ID: 3, Email: "a@b.com", PasswordHash: "x"}, nil).Once()
	info, err := svc.GetCurrentUser(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.ID)

	repo.On("GetUserByEmail", mock.Anything, "gone@b.com").Return(nil, repository.ErrUserNotFound).Once()
	_, err = svc.GetCurrentUser(ctx, "gone@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("old-password", bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: 4, Email: "a@b.com", PasswordHash: hash}

	t.Run("Success", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()
		repo.On("UpsertPasswordHash", mock.Anything, int64(4), mock.MatchedBy(func(h string) bool {
			return bcrypt.CompareHashAndPassword([]byte(h), []byte("new-password")) == nil
		})).Return(nil).Once()

		require.NoError(t, svc.ChangePassword(ctx, "A@b.com", "old-password", "new-password"))
	})

	t.Run("WrongCurrentPassword", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()

		err := svc.ChangePassword(ctx, "a@b.com", "guess", "new-password")
		assert.ErrorIs(t, err, ErrIncorrectPassword)
	})

	t.Run("NoCredential", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(&models.User{ID: 4, Email: "a@b.com"}, nil).Once()

		err := svc.ChangePassword(ctx, "a@b.com", "", "new-password")
		assert.ErrorIs(t, err, ErrIncorrectPassword)
	})

	t.Run("WeakNewPassword", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(user, nil).Once()

		err := svc.ChangePassword(ctx, "a@b.com", "old-password", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("UserGone", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByEmail", mock.Anything, "a@b.com").Return(nil, repository.ErrUserNotFound).Once()

		err := svc.ChangePassword(ctx, "a@b.com", "old-password", "new-password")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	current := &models.User{ID: 4, Email: "a@b.com", DisplayName: "Ada"}

	t.Run("DisplayNameKeepsToken", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		name := "  Countess "
		repo.On("GetUserByID", mock.Anything, int64(4)).Return(current, nil).Once()
		repo.On("UpdateProfile", mock.Anything, int64(4), "a@b.com", "Countess").
			Return(&models.User{ID: 4, Email: "a@b.com", DisplayName: "Countess"}, nil).Once()

		resp, err := svc.UpdateProfile(ctx, 4, models.UpdateProfileRequest{DisplayName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Countess", resp.User.DisplayName)
		assert.Empty(t, resp.Token)
		assert.Nil(t, resp.ExpiresAt)
	})

	t.Run("EmailChangeIssuesToken", func(t *testing.T) {
		svc, repo, tokens := newTestUserService(t)
		email := " Lovelace@B.com"
		updated := &models.User{ID: 4, Email: "lovelace@b.com", DisplayName: "Ada"}
		exp := time.Now().Add(time.Hour)
		repo.On("GetUserByID", mock.Anything, int64(4)).Return(current, nil).Once()
		repo.On("UpdateProfile", mock.Anything, int64(4), "lovelace@b.com", "Ada").Return(updated, nil).Once()
		tokens.On("GenerateToken", updated).Return("fresh-token", exp, nil).Once()

		resp, err := svc.UpdateProfile(ctx, 4, models.UpdateProfileRequest{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "fresh-token", resp.Token)
		require.NotNil(t, resp.ExpiresAt)
		assert.Equal(t, exp, *resp.ExpiresAt)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		email := "nope"
		repo.On("GetUserByID", mock.Anything, int64(4)).Return(current, nil).Once()

		_, err := svc.UpdateProfile(ctx, 4, models.UpdateProfileRequest{Email: &email})
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("DisplayNameTooLong", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		name := strings.Repeat("é", 64)
		repo.On("GetUserByID", mock.Anything, int64(4)).Return(current, nil).Once()

		_, err := svc.UpdateProfile(ctx, 4, models.UpdateProfileRequest{DisplayName: &name})
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		email := "grace@b.com"
		repo.On("GetUserByID", mock.Anything, int64(4)).Return(current, nil).Once()
		repo.On("UpdateProfile", mock.Anything, int64(4), "grace@b.com", "Ada").Return(nil, repository.ErrUserExists).Once()

		_, err := svc.UpdateProfile(ctx, 4, models.UpdateProfileRequest{Email: &email})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("UserGone", func(t *testing.T) {
		svc, repo, _ := newTestUserService(t)
		repo.On("GetUserByID", mock.Anything, int64(4)).Return(nil, repository.ErrUserNotFound).Once()

		_, err := svc.UpdateProfile(ctx, 4, models.UpdateProfileRequest{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
