package service

import (
	"context"
	"errors"
	"fmt"

	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/repository"
	"orderdesk/internal/app/store/util"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/metrics"
)

// AuthService обрабатывает бизнес-логику аутентификации
// Роль кладется в сам токен, сессии на сервере не хранятся
type AuthService struct {
	userRepo   repository.UserRepository
	limiter    LoginRateLimiter
	jwtManager *util.JWTManager
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	limiter LoginRateLimiter,
	jwtManager *util.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		limiter:    limiter,
		jwtManager: jwtManager,
	}
}

// Login выполняет вход пользователя и выдает подписанный токен
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	blocked, err := s.limiter.Blocked(ctx, req.Username)
	if err != nil {
		// Недоступность Redis не должна блокировать вход
		logger.Warn().Err(err).Msg("login limiter unavailable, skipping throttle check")
	}
	if blocked {
		metrics.AuthLogins.WithLabelValues("throttled").Inc()
		return nil, ErrTooManyLoginAttempts
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordFailure(ctx, req.Username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		s.recordFailure(ctx, req.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.limiter.Reset(ctx, req.Username); err != nil {
		logger.Warn().Err(err).Msg("failed to reset login attempts")
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("login successful")

	return &entity.LoginResponse{Token: token, Role: user.Role}, nil
}

// EnsureBootstrapAdmin создает учетную запись администратора при первом запуске
// Если пользователь admin уже существует, ничего не делает
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, username, password string) error {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to check bootstrap admin: %w", err)
	}

	id, err := newUniqueID(ctx, "user", s.userRepo.Exists)
	if err != nil {
		return err
	}

	passwordHash, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	user := &entity.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "admin",
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	logger.Info().Str("user_id", user.ID).Str("username", username).Msg("bootstrap admin created")
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	metrics.AuthLogins.WithLabelValues("failed").Inc()
	if err := s.limiter.RecordFailure(ctx, username); err != nil {
		logger.Warn().Err(err).Msg("failed to record login failure")
	}
}
