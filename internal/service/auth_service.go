package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shop-platform/internal/entity"
	"shop-platform/internal/repository"
)

const sessionTTL = 24 * time.Hour

// UserStore is the credential persistence seen by the service.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
}

type JwtCustomClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// AuthService registers and verifies username/secret pairs. Secrets are
// bcrypt-hashed before they touch storage and the plaintext is never
// logged. Verify returns distinct reasons; the HTTP layer collapses them.
type AuthService struct {
	userRepo  UserStore
	rdb       *redis.Client
	jwtSecret []byte
}

func NewAuthService(userRepo UserStore, rdb *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		rdb:       rdb,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates the credential pair. Fails on empty fields and on a
// username that already exists.
func (s *AuthService) Register(ctx context.Context, username, secret string) error {
	if username == "" || secret == "" {
		return ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.userRepo.CreateUser(ctx, &entity.User{
		Username:     username,
		PasswordHash: string(hash),
	})
	if errors.Is(err, repository.ErrUserExists) {
		logger.Warn().Str("username", username).Msg("Registration rejected, username taken")
		return ErrUserExists
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return err
	}

	logger.Info().Str("username", username).Msg("User registered")
	return nil
}

// Verify checks a credential pair. The returned reason distinguishes an
// unknown username from a wrong secret so the server can log them apart;
// callers must not forward that distinction to clients.
func (s *AuthService) Verify(ctx context.Context, username, secret string) error {
	if username == "" || secret == "" {
		return ErrMissingCredentials
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		logger.Warn().Str("username", username).Msg("Login attempt for unknown username")
		return ErrUnknownIdentity
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error loading user")
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		logger.Warn().Str("username", username).Msg("Login attempt with wrong password")
		return ErrSecretMismatch
	}

	return nil
}

// Login verifies the pair and mints a session token, stored in redis keyed
// by username so it can be validated and revoked server-side.
func (s *AuthService) Login(ctx context.Context, username, secret string) (string, error) {
	if err := s.Verify(ctx, username, secret); err != nil {
		return "", err
	}

	claims := &JwtCustomClaims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := tkn.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, sessionKey(username), token, sessionTTL).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// ValidateToken checks that the presented token is the live session for
// the username.
func (s *AuthService) ValidateToken(ctx context.Context, username, token string) error {
	stored, err := s.rdb.Get(ctx, sessionKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session not found")
		}
		return err
	}

	if stored != token {
		return fmt.Errorf("session token mismatch")
	}

	return nil
}

func sessionKey(username string) string {
	return fmt.Sprintf("session:%s", username)
}
