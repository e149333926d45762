package userapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"myforum/internal/core/apperr"
	userEntity "myforum/internal/core/user"
	userPort "myforum/internal/ports/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "myforum"

var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims محتوای توکن: شناسه کاربر در Subject به همراه ایمیل و آدرس آواتار
type Claims struct {
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	jwt.StandardClaims
}

// UserService سرویس مدیریت کاربران
type UserService struct {
	UserRepository userPort.UserRepository
	jwtKey         []byte
	tokenTTL       time.Duration
	avatarBaseURL  string
	logger         *zap.Logger
	now            func() time.Time
}

func NewUserService(repo userPort.UserRepository, jwtKey []byte, tokenTTL time.Duration, avatarBaseURL string, logger *zap.Logger) *UserService {
	return &UserService{
		UserRepository: repo,
		jwtKey:         jwtKey,
		tokenTTL:       tokenTTL,
		avatarBaseURL:  avatarBaseURL,
		logger:         logger,
		now:            time.Now,
	}
}

// RegisterUser ثبت‌نام کاربر جدید
func (s *UserService) RegisterUser(ctx context.Context, username, email, password, avatar string) (*userPort.UserDTO, error) {
	v := apperr.NewValidationError()
	if strings.TrimSpace(username) == "" {
		v.Add("username", "must not be blank")
	} else if utf8.RuneCountInString(username) > 64 {
		v.Add("username", "must be at most 64 characters")
	}
	if !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	if len(password) < 6 {
		v.Add("password", "must be at least 6 characters")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	// بررسی اینکه آیا کاربر با این یوزرنیم یا ایمیل قبلاً ثبت شده است
	existing, err := s.UserRepository.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		return nil, apperr.Conflict("user", "username or email already taken")
	}
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.UserRepository.Create(ctx, &userEntity.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Avatar:   s.avatarURL(avatar),
	})
	if err != nil {
		return nil, err
	}

	return &userPort.UserDTO{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}, nil
}

// LoginUser ورود کاربر و صدور توکن JWT
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error) {
	u, err := s.UserRepository.FindByUsername(ctx, username)
	if err != nil {
		if !apperr.IsNotFound(err) {
			s.logger.Error("Error finding user", zap.String("username", username), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.tokenTTL)
	token, err := s.generateJWT(u, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	return &userPort.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// ParseToken turns a bearer token into the viewer it was issued for.
func (s *UserService) ParseToken(tokenString string) (*userEntity.Viewer, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return &userEntity.Viewer{ID: id, Avatar: claims.Avatar}, nil
}

func (s *UserService) generateJWT(u *userEntity.User, expiresAt time.Time) (string, error) {
	claims := &Claims{
		Email:  u.Email,
		Avatar: u.Avatar,
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			Issuer:    issuer,
			IssuedAt:  s.now().Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// avatarURL prefixes bare file names with AVATAR_BASE_URL.
func (s *UserService) avatarURL(avatar string) string {
	if avatar == "" {
		return ""
	}
	if strings.Contains(avatar, "://") || strings.HasPrefix(avatar, "/") {
		return avatar
	}
	return s.avatarBaseURL + avatar
}
