package service

import (
	"errors"
	"fmt"
	"time"

	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/repository"
	"go-carwash-pullout/pkg/jwt"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
)

// SessionIdleTimeout is how long a session survives without a heartbeat.
const SessionIdleTimeout = 5 * time.Minute

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uint) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       string             `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       string             `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	notifier Notifier
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, notifier Notifier) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a fresh version invalidates tokens issued earlier.
	tokenVersion := uuid.New().String()
	now := s.now()
	if err := s.userRepo.UpdateSession(user.ID, tokenVersion, now); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	user.TokenVersion = tokenVersion
	user.LastSeenAt = &now

	privileges := user.Privileges()
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.Role, privileges, tokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: privileges,
	}, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	// A session with no recorded activity is treated as idle.
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > SessionIdleTimeout {
		return nil, ErrSessionTimeout
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.Privileges(),
	}, nil
}

func (s *authService) Heartbeat(userID uint) error {
	now := s.now()
	if err := s.userRepo.UpdateLastSeen(userID, now); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Publish("user_status_update", map[string]interface{}{
			"user_id":      userID,
			"status":       "online",
			"last_seen_at": now,
		})
	}
	return nil
}
