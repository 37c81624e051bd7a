package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cerdowizard/node-wallet/internal/ledger"
)

const minPasswordLen = 8

// Service manages identity lifecycle.
type Service struct {
	repo            Repository
	defaultCurrency string
}

// NewService creates a new identity service. Wallets opened without an explicit
// currency use defaultCurrency.
func NewService(repo Repository, defaultCurrency string) *Service {
	return &Service{repo: repo, defaultCurrency: defaultCurrency}
}

// Register creates a user with a hashed password and opens its wallet.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, ledger.Wallet, error) {
	if len(creds.Password) < minPasswordLen {
		return User{}, ledger.Wallet{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, ledger.Wallet{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(creds.Email),
		Role:         roleUser,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	currency := creds.Currency
	if strings.TrimSpace(currency) == "" {
		currency = s.defaultCurrency
	}
	wallet := ledger.NewWallet(user.ID, currency)

	if err := s.repo.Create(ctx, user, wallet); err != nil {
		return User{}, ledger.Wallet{}, err
	}
	return user, wallet, nil
}

// Authenticate verifies an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// User returns the user with the given id.
func (s *Service) User(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
