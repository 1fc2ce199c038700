package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/techmilsolutions/chemmentor/config"
	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"github.com/techmilsolutions/chemmentor/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken. Please choose another one")
	ErrUsernameNotFound   = errors.New("username not found")
)

// NormalizeUsername lowercases and trims a username. Idempotent; all
// username comparisons go through it.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername enforces the signup rules on an already-normalized name.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword enforces the minimum length shared by signup and resets.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

type AuthService interface {
	SignUp(username, password string) (*dto.SessionResponse, error)
	SignIn(username, password string) (*dto.SessionResponse, error)
	UserFromToken(token string) (*model.User, error)
	UpdatePassword(userID uuid.UUID, newPassword string) error
	ResetPasswordByUsername(username, newPassword string) error
	EmailForUsername(username string) string
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

// EmailForUsername derives the synthetic login key; accounts never receive
// mail at it.
func (s *authService) EmailForUsername(username string) string {
	return fmt.Sprintf("%s@%s", NormalizeUsername(username), s.cfg.Auth.EmailDomain)
}

func (s *authService) SignUp(username, password string) (*dto.SessionResponse, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.UsernameExists(username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("SignUp: username lookup failed")
		return nil, fmt.Errorf("error checking username availability: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        s.EmailForUsername(username),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		log.Error().Err(err).Str("username", username).Msg("SignUp: failed to create user")
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return s.session(user)
}

func (s *authService) SignIn(username, password string) (*dto.SessionResponse, error) {
	username = NormalizeUsername(username)
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *authService) session(user *model.User) (*dto.SessionResponse, error) {
	ttl := time.Duration(s.cfg.Auth.TokenTTLH) * time.Hour
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("error signing session token: %w", err)
	}
	return &dto.SessionResponse{
		Token: token,
		User:  dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email},
	}, nil
}

func (s *authService) UserFromToken(tokenString string) (*model.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.userRepo.FindByID(userID)
}

func (s *authService) UpdatePassword(userID uuid.UUID, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.userRepo.UpdatePassword(userID, string(hash))
}

// ResetPasswordByUsername services the unauthenticated forgot-password flow.
// Accounts use synthetic emails, so there is no verification mail; the
// username is the recovery key.
func (s *authService) ResetPasswordByUsername(username, newPassword string) error {
	username = NormalizeUsername(username)
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUsernameNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}
	return s.UpdatePassword(user.ID, newPassword)
}
