package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"employee/internal/models"
	"employee/internal/repositories"
	"employee/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo *MockAccountRepository) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, time.Hour, discardLogger())
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()

	in := services.RegisterInput{
		Email:     "jane@EXAMPLE.com",
		FirstName: "Jane",
		LastName:  "Smith",
		Password:  "password123",
		Password2: "password123",
	}

	// Test successful registration
	mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, notFound("account")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Account")).Return(nil).Once()

	account, err := authService.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", account.Email)
	assert.NotEqual(t, "password123", account.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(&models.Account{ID: "1"}, nil).Once()
	_, err = authService.Register(ctx, in)
	assert.True(t, errors.Is(err, services.ErrConflict))
	assert.Contains(t, err.Error(), "already registered")
	mockRepo.AssertExpectations(t)

	// Test losing a concurrent registration to the unique index
	mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, notFound("account")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Account")).
		Return(fmt.Errorf("account with email jane@example.com: %w", repositories.ErrConflict)).Once()
	_, err = authService.Register(ctx, in)
	assert.True(t, errors.Is(err, services.ErrConflict))
	mockRepo.AssertExpectations(t)

	// Test mismatched passwords never reach the repository
	in.Password2 = "different"
	_, err = authService.Register(ctx, in)
	assert.True(t, errors.Is(err, services.ErrValidation))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	account := &models.Account{
		ID:        "account-123",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Smith",
		Password:  string(hashedPassword),
	}

	// Test successful login
	mockRepo.On("GetByEmail", ctx, account.Email).Return(account, nil).Once()
	token, err := authService.Login(ctx, "jane@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, account.ID, claims["account_id"])
	assert.Equal(t, account.Email, claims["email"])
	assert.Equal(t, "Jane", claims["first_name"])
	assert.Equal(t, "Smith", claims["last_name"])
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", ctx, account.Email).Return(account, nil).Once()
	_, err = authService.Login(ctx, "jane@example.com", "wrongpassword")
	assert.True(t, errors.Is(err, services.ErrInvalidCredentials))
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (unknown email)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, notFound("account")).Once()
	_, err = authService.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, services.ErrInvalidCredentials))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockAccountRepository))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": "account-123",
		"exp":        jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "account-123", claims["account_id"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": "account-123",
		"exp":        jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)

	otherSecret, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(otherSecret)
	assert.Error(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.DefaultCost)
	account := &models.Account{ID: "account-123", Email: "jane@example.com", Password: string(hashedPassword)}

	mockRepo.On("GetByID", ctx, "account-123").Return(account, nil).Once()
	err := authService.ChangePassword(ctx, "account-123", "wrong", "newpassword")
	assert.True(t, errors.Is(err, services.ErrValidation))

	mockRepo.On("GetByID", ctx, "account-123").Return(account, nil).Once()
	mockRepo.On("Update", ctx, account).Return(nil).Once()
	err = authService.ChangePassword(ctx, "account-123", "oldpassword", "newpassword")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte("newpassword")))

	mockRepo.On("GetByID", ctx, "missing").Return(nil, notFound("account")).Once()
	err = authService.ChangePassword(ctx, "missing", "oldpassword", "newpassword")
	assert.True(t, errors.Is(err, services.ErrNotFound))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()

	account := &models.Account{ID: "account-123", Email: "jane@example.com", FirstName: "Jane", LastName: "Smith"}

	// Email owned by another account
	mockRepo.On("GetByID", ctx, "account-123").Return(account, nil).Once()
	mockRepo.On("GetByEmail", ctx, "taken@example.com").Return(&models.Account{ID: "other"}, nil).Once()
	_, err := authService.UpdateProfile(ctx, "account-123", services.ProfileInput{Email: "taken@example.com", FirstName: "Jane", LastName: "Smith"})
	assert.True(t, errors.Is(err, services.ErrConflict))

	// Keeping the same email is allowed
	mockRepo.On("GetByID", ctx, "account-123").Return(account, nil).Once()
	mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(account, nil).Once()
	mockRepo.On("Update", ctx, account).Return(nil).Once()
	updated, err := authService.UpdateProfile(ctx, "account-123", services.ProfileInput{
		Email:     "jane@example.com",
		FirstName: "Janet",
		LastName:  "Smith",
		Phone:     strPtr("555-0100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "555-0100", *updated.Phone)
	mockRepo.AssertExpectations(t)

	// Email claimed by another account between the check and the write
	claimed := &models.Account{ID: "account-123", Email: "jane@example.com", FirstName: "Jane", LastName: "Smith"}
	mockRepo.On("GetByID", ctx, "account-123").Return(claimed, nil).Once()
	mockRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, notFound("account")).Once()
	mockRepo.On("Update", ctx, claimed).Return(fmt.Errorf("account with email new@example.com: %w", repositories.ErrConflict)).Once()
	_, err = authService.UpdateProfile(ctx, "account-123", services.ProfileInput{Email: "new@example.com", FirstName: "Jane", LastName: "Smith"})
	assert.True(t, errors.Is(err, services.ErrConflict))
	mockRepo.AssertExpectations(t)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Jane@example.com", services.NormalizeEmail("  Jane@EXAMPLE.com "))
	assert.Equal(t, "not-an-email", services.NormalizeEmail("not-an-email"))
}
