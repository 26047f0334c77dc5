package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"employee/internal/models"
	"employee/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the data of a new account.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Password2 string
}

// ProfileInput carries the editable profile attributes of an account.
type ProfileInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     *string
	Address   *string
}

// AuthService handles business logic for accounts and authentication.
type AuthService struct {
	accountRepo repositories.AccountRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	log         logrus.FieldLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(accountRepo repositories.AccountRepository, jwtSecret string, tokenTTL time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		log:         log,
	}
}

// Register creates an account with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if in.Password != in.Password2 {
		return nil, errors.Wrap(ErrValidation, "password fields didn't match")
	}
	email := NormalizeEmail(in.Email)
	if existing, err := s.accountRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Wrapf(ErrConflict, "email '%s' already registered", email)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, errors.Wrap(err, "register account")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	account := &models.Account{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, wrapRepoErr(err, "failed to register account")
	}
	return account, nil
}

// Login authenticates an account and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.accountRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		// Do not reveal whether the email exists.
		s.log.WithError(err).Debug("login lookup failed")
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(account)
}

// IssueToken signs a token carrying the account identity and name claims.
func (s *AuthService) IssueToken(account *models.Account) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": account.ID,
		"email":      account.Email,
		"first_name": account.FirstName,
		"last_name":  account.LastName,
		"exp":        now.Add(s.tokenTTL).Unix(),
		"iat":        now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate token")
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// CurrentAccount returns the account behind accountID.
func (s *AuthService) CurrentAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, wrapRepoErr(err, "get account %s", accountID)
	}
	return account, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	account, err := s.CurrentAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(oldPassword)); err != nil {
		return errors.Wrap(ErrValidation, "old password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	account.Password = string(hashedPassword)
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return wrapRepoErr(err, "change password")
	}
	return nil
}

// UpdateProfile writes the profile attributes. The email must not belong to
// another account.
func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, in ProfileInput) (*models.Account, error) {
	account, err := s.CurrentAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(in.Email)
	if other, err := s.accountRepo.GetByEmail(ctx, email); err == nil && other.ID != account.ID {
		return nil, errors.Wrapf(ErrConflict, "email '%s' is already in use", email)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, errors.Wrap(err, "update profile")
	}

	account.Email = email
	account.FirstName = in.FirstName
	account.LastName = in.LastName
	account.Phone = in.Phone
	account.Address = in.Address
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, wrapRepoErr(err, "update profile")
	}
	return account, nil
}

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}
