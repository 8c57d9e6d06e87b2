package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JakubMikolajczyk/Library/internal/user"
	"github.com/JakubMikolajczyk/Library/internal/utils"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password; clients must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWrongPassword      = errors.New("wrong old password")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrLoginFailed        = errors.New("login failed")
)

// TokenPair is a freshly issued access+refresh token couple sharing one
// token id.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Registration carries the profile fields of a new user.
type Registration struct {
	Username string
	Password string
	Email    string
	Name     string
	Surname  string
	Address  string
	City     string
}

type SessionService interface {
	Login(ctx context.Context, username, password string) (TokenPair, error)
	Register(ctx context.Context, reg Registration) (TokenPair, error)
	Refresh(ctx context.Context, refreshJWT string) (newAccessToken string, err error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	LogoutAll(ctx context.Context, userID uint) error
}

type sessionService struct {
	users           user.UserRepository
	tokens          TokenRepository
	logger          *zap.Logger
	accessSecret    string
	refreshSecret   string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewSessionService(
	users user.UserRepository,
	tokens TokenRepository,
	logger *zap.Logger,
	accessSecret string,
	accessTTL time.Duration,
	refreshSecret string,
	refreshTTL time.Duration,
) SessionService {
	return &sessionService{
		users:           users,
		tokens:          tokens,
		logger:          logger,
		accessSecret:    accessSecret,
		refreshSecret:   refreshSecret,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

func (s *sessionService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := s.users.ReadByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, ErrLoginFailed
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.openSession(ctx, u)
}

func (s *sessionService) Register(ctx context.Context, reg Registration) (TokenPair, error) {
	if reg.Username == "" {
		return TokenPair{}, user.ErrEmptyUsername
	}
	if err := user.CheckPassword(reg.Password); err != nil {
		return TokenPair{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return TokenPair{}, user.ErrHashingPasswordFailed
	}

	u := user.NewUser(reg.Username, string(hashed))
	u.Email = reg.Email
	u.Name = reg.Name
	u.Surname = reg.Surname
	u.Address = reg.Address
	u.City = reg.City

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrUsernameAlreadyExists) {
			return TokenPair{}, ErrUsernameTaken
		}
		return TokenPair{}, err
	}

	// Auto-login after registration.
	return s.openSession(ctx, u)
}

// openSession issues a token pair under a fresh random token id and records
// it in the ledger. A unique-constraint collision on the id is retried once
// with a new id; anything rarer than that points at a broken random source.
func (s *sessionService) openSession(ctx context.Context, u *user.User) (TokenPair, error) {
	subject := strconv.Itoa(int(u.ID))

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		tokenID := uuid.NewString()

		accessJWT, err := utils.IssueAccessToken(subject, tokenID, u.Role, s.accessSecret, s.accessTokenTTL)
		if err != nil {
			return TokenPair{}, err
		}
		refreshJWT, err := utils.IssueRefreshToken(subject, tokenID, s.refreshSecret, s.refreshTokenTTL)
		if err != nil {
			return TokenPair{}, err
		}

		err = s.tokens.Create(ctx, &Token{
			ID:        tokenID,
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(s.refreshTokenTTL),
		})
		if err == nil {
			return TokenPair{AccessToken: accessJWT, RefreshToken: refreshJWT}, nil
		}
		if !errors.Is(err, ErrTokenIDConflict) {
			return TokenPair{}, err
		}
		s.logger.Warn("token id collision, retrying", zap.String("tokenID", tokenID))
		lastErr = err
	}
	return TokenPair{}, lastErr
}

// Refresh rotates the access token of a still-valid session. The refresh
// token is validated twice: cryptographically by the codec and against the
// ledger, which is the source of truth for revocation. An expired token has
// its ledger row removed on the spot (lazy eviction); a well-formed token
// whose row is gone is revoked.
func (s *sessionService) Refresh(ctx context.Context, refreshJWT string) (string, error) {
	claims, err := utils.ParseRefreshToken(refreshJWT, s.refreshSecret)
	if errors.Is(err, utils.ErrTokenExpired) {
		exists, lookErr := s.tokens.ExistsByID(ctx, claims.ID)
		if lookErr != nil {
			return "", lookErr
		}
		if !exists {
			// Already evicted (or never issued): the session is gone.
			return "", ErrSessionRevoked
		}
		if delErr := s.tokens.DeleteByID(ctx, claims.ID); delErr != nil {
			s.logger.Error("failed to evict expired token row", zap.String("tokenID", claims.ID), zap.Error(delErr))
		}
		return "", ErrSessionExpired
	}
	if err != nil {
		return "", err
	}

	exists, err := s.tokens.ExistsByID(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrSessionRevoked
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return "", utils.ErrMalformedToken
	}
	u, err := s.users.ReadByID(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrSessionRevoked
		}
		return "", err
	}

	return utils.ReissueAccessToken(claims, u.Role, s.accessSecret, s.accessTokenTTL)
}

func (s *sessionService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	u, err := s.users.ReadByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}
	if err := user.CheckPassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return user.ErrHashingPasswordFailed
	}
	u.Password = string(hashed)
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	// Every session of the user is revoked; all clients must log in again
	// with the new password.
	return s.LogoutAll(ctx, userID)
}

func (s *sessionService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.tokens.DeleteAllByUserID(ctx, userID); err != nil {
		s.logger.Error("failed to revoke sessions", zap.Uint("userID", userID), zap.Error(err))
		return err
	}
	return nil
}
