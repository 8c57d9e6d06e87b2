package user

import (
	"context"
	"errors"
	"net/mail"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingPasswordFailed = errors.New("hashing password failed")
	ErrInvalidEmailFormat    = errors.New("invalid email format")
	ErrEmptyUsername         = errors.New("username must not be empty")
)

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Email   string
	Name    string
	Surname string
	Address string
	City    string
}

type UserService interface {
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) error
	UpdateRole(ctx context.Context, id uint, role Role) error
	UpdatePassword(ctx context.Context, id uint, password string) error
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo   UserRepository
	logger *zap.Logger
}

func NewUserService(repo UserRepository, logger *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

/** READ */
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user, err := s.repo.ReadByUsername(ctx, username)
	if err != nil {
		s.logger.Error("failed to get user by username", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*User, error) {
	user, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user by ID", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ReadAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

/** UPDATE */
func (s *userService) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) error {
	if update.Email != "" {
		if _, err := mail.ParseAddress(update.Email); err != nil {
			s.logger.Warn("invalid email format", zap.Uint("id", id), zap.String("email", update.Email))
			return ErrInvalidEmailFormat
		}
	}

	user, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to update profile, user not found", zap.Uint("id", id), zap.Error(err))
		return err
	}

	user.Email = update.Email
	user.Name = update.Name
	user.Surname = update.Surname
	user.Address = update.Address
	user.City = update.City

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update profile in repository", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) UpdateRole(ctx context.Context, id uint, role Role) error {
	user, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to update role, user not found", zap.Uint("id", id), zap.Error(err))
		return err
	}

	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update role in repository", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) UpdatePassword(ctx context.Context, id uint, password string) error {
	if err := CheckPassword(password); err != nil {
		s.logger.Warn("invalid password format", zap.Uint("id", id), zap.Error(err))
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return ErrHashingPasswordFailed
	}

	user, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to update password, user not found", zap.Uint("id", id), zap.Error(err))
		return err
	}

	user.Password = string(hashed)
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update password in repository", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

/** DELETE */
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}
