package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"folio-chat/config"
	"folio-chat/internal/domain/user"
	"folio-chat/internal/repository"
	folio_errors "folio-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Identity string
	Password string
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if err := s.ensureIdentityAvailable(ctx, in); err != nil {
		return AuthResponse{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        toNullString(in.Email),
		Username:     toNullString(in.Username),
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	accessToken, expiresIn, err := s.newAccessToken(newUser.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		User:        toUserInfo(*newUser),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Identity == "" || in.Password == "" {
		return AuthResponse{}, folio_errors.ErrInvalidInput
	}

	u, err := s.getUserByIdentity(ctx, in.Identity)
	if err != nil {
		if errors.Is(err, folio_errors.ErrNotFound) {
			return AuthResponse{}, folio_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if !u.IsActive {
		return AuthResponse{}, folio_errors.ErrForbidden
	}

	if err := comparePassword(u.PasswordHash, in.Password); err != nil {
		return AuthResponse{}, folio_errors.ErrUnauthorized
	}

	accessToken, expiresIn, err := s.newAccessToken(u.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		User:        toUserInfo(u),
	}, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, folio_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, folio_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, folio_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, folio_errors.ErrUnauthorized
	}

	return *claims, nil
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, folio_errors.ErrInvalidInput):
		return 400
	case errors.Is(err, folio_errors.ErrUnauthorized):
		return 401
	case errors.Is(err, folio_errors.ErrForbidden):
		return 403
	case errors.Is(err, folio_errors.ErrNotFound):
		return 404
	case errors.Is(err, folio_errors.ErrAlreadyExists), errors.Is(err, folio_errors.ErrConflict):
		return 409
	case errors.Is(err, folio_errors.ErrTooLarge):
		return 413
	case errors.Is(err, folio_errors.ErrRateLimited):
		return 429
	default:
		return 500
	}
}

type ctxKey string

var userIDKey ctxKey = "user_id"

func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func (s *AuthService) ensureIdentityAvailable(ctx context.Context, in RegisterInput) error {
	if in.Email != "" {
		if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
			return folio_errors.ErrAlreadyExists
		} else if !errors.Is(err, folio_errors.ErrNotFound) {
			return err
		}
	}

	if in.Username != "" {
		if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
			return folio_errors.ErrAlreadyExists
		} else if !errors.Is(err, folio_errors.ErrNotFound) {
			return err
		}
	}

	return nil
}

func (s *AuthService) getUserByIdentity(ctx context.Context, identity string) (user.User, error) {
	if strings.Contains(identity, "@") {
		u, err := s.userRepo.GetByEmail(ctx, identity)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, folio_errors.ErrNotFound) {
			return user.User{}, err
		}
	}

	return s.userRepo.GetByUsername(ctx, identity)
}

func (s *AuthService) newAccessToken(userID uuid.UUID) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.accessTTL.Seconds()), nil
}

func validateRegister(in RegisterInput) error {
	if in.Password == "" || in.DisplayName == "" {
		return folio_errors.ErrInvalidInput
	}
	if in.Email == "" && in.Username == "" {
		return folio_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return folio_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func toNullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func toUserInfo(u user.User) UserInfo {
	info := UserInfo{
		ID:          u.ID.String(),
		DisplayName: u.DisplayName,
	}
	if u.Username.Valid {
		info.Username = u.Username.String
	}
	if u.Email.Valid {
		info.Email = u.Email.String
	}
	info.AvatarURL = u.AvatarURL
	return info
}
