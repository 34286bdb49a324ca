package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adboard/adboard-api/internal/api/shared"
	"github.com/adboard/adboard-api/internal/domain"
	"github.com/adboard/adboard-api/internal/platform/logger"
	"github.com/adboard/adboard-api/internal/service/auth"
	"github.com/adboard/adboard-api/internal/store"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	tokens    auth.TokenService
	passwords auth.PasswordHasher
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler with the given dependencies.
func NewAuthHandler(
	tokens auth.TokenService,
	passwords auth.PasswordHasher,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}

	return &AuthHandler{
		tokens:    tokens,
		passwords: passwords,
		logger:    log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /register. A successful registration also logs the
// user in: the response carries a fresh bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	var req RegisterRequest
	if err := decodeValid(r, &req); err != nil {
		return err
	}

	hashed, err := h.passwords.Hash(req.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err.Error())
		return err
	}

	user, err := domain.NewUser(req.Email, hashed)
	if err != nil {
		return err
	}

	if err := sess.Users().Create(r.Context(), user); err != nil {
		return err
	}

	token, err := h.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to issue token", "error", err.Error(), "user_id", user.ID)
		return err
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token:  token,
		UserID: user.ID,
	})
	return nil
}

// Login handles POST /login. Unknown emails and wrong passwords are
// indistinguishable to the client.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	var req LoginRequest
	if err := decodeValid(r, &req); err != nil {
		return err
	}

	user, err := sess.Users().GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return NewError(http.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}

	if err := h.passwords.Compare(user.HashedPassword, req.Password); err != nil {
		log.Debug("password mismatch on login", "user_id", user.ID)
		return NewError(http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to issue token", "error", err.Error(), "user_id", user.ID)
		return err
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token:  token,
		UserID: user.ID,
	})
	return nil
}
