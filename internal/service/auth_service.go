package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"atelier/internal/config"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{repo: repo, cfg: cfg}
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	user, err := s.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, models.NewInternalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// RegisterSuperuser creates an account able to write portfolio content.
// Only used by the admin CLI; there is no public signup.
func (s *AuthService) RegisterSuperuser(ctx context.Context, username, email, password string) (*models.User, error) {
	fieldErrs := models.FieldErrors{}
	if err := validation.Username(username); err != nil {
		fieldErrs.Add("username", err.Error())
	}
	if err := validation.Email(email); err != nil {
		fieldErrs.Add("email", err.Error())
	}
	if err := validation.Password(password); err != nil {
		fieldErrs.Add("password", err.Error())
	}
	if fieldErrs.HasErrors() {
		return nil, fieldErrs
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    string(hash),
		IsSuperuser: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewFieldError("username", "A user with this username or email already exists.")
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// generateToken creates a JWT token for the given user
func (s *AuthService) generateToken(user *models.User) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          strconv.FormatUint(uint64(user.ID), 10),
		"username":     user.Username,
		"is_superuser": user.IsSuperuser,
		"iss":          "atelier-api",
		"aud":          "atelier-client",
		"exp":          now.Add(time.Hour * 24 * 7).Unix(),
		"iat":          now.Unix(),
		"nbf":          now.Unix(),
		"jti":          fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
