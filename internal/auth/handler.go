package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/httperr"
	"github.com/cerdowizard/node-wallet/internal/identity"
	"github.com/cerdowizard/node-wallet/internal/ledger"
)

// Handler exposes registration, login, token refresh and the caller profile.
type Handler struct {
	ids      *identity.Service
	issuer   *Issuer
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(ids *identity.Service, issuer *Issuer, validate *validator.Validate, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, issuer: issuer, validate: validate, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

type registerResponse struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	WalletID      string `json:"wallet_id"`
	WalletAddress string `json:"wallet_address"`
	Currency      string `json:"currency"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type profileResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates a user and its wallet.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperr.BadRequest(err.Error())
	}

	user, wallet, err := h.ids.Register(c.UserContext(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Currency: req.Currency,
	})
	switch {
	case errors.Is(err, identity.ErrUserExists), errors.Is(err, ledger.ErrWalletExists):
		return httperr.New(http.StatusConflict, "USER_EXISTS", "user already exists")
	case errors.Is(err, identity.ErrWeakPassword):
		return httperr.BadRequest(err.Error())
	case err != nil:
		return err
	}

	h.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("wallet_id", wallet.ID),
	)
	return c.Status(http.StatusCreated).JSON(registerResponse{
		UserID:        user.ID,
		Email:         user.Email,
		WalletID:      wallet.ID,
		WalletAddress: wallet.Address,
		Currency:      wallet.Currency,
	})
}

// Login validates credentials and returns an access and refresh token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperr.BadRequest(err.Error())
	}

	user, err := h.ids.Authenticate(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return httperr.Unauthorized(err.Error())
	}
	if err != nil {
		return err
	}

	return h.issueTokens(c, user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperr.BadRequest(err.Error())
	}

	claims, err := h.issuer.ParseRefresh(req.RefreshToken)
	if errors.Is(err, ErrExpiredToken) {
		return httperr.Unauthorized("refresh token expired")
	}
	if err != nil {
		return httperr.Unauthorized("invalid refresh token")
	}

	user, err := h.ids.User(c.UserContext(), claims.Subject)
	if errors.Is(err, identity.ErrUserNotFound) {
		return httperr.New(http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	}
	if err != nil {
		return err
	}
	return h.issueTokens(c, user)
}

// Me returns the authenticated caller's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.ids.User(c.UserContext(), UserID(c))
	if errors.Is(err, identity.ErrUserNotFound) {
		return httperr.New(http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(profileResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}

func (h *Handler) issueTokens(c *fiber.Ctx, user identity.User) error {
	access, _, err := h.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return err
	}
	refresh, _, err := h.issuer.IssueRefresh(user.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(tokenResponse{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.issuer.TTL().Seconds()),
	})
}
