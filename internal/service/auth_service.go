package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veggiemarket/internal/catalog"
	"veggiemarket/internal/domain"
	"veggiemarket/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidDomain      = errors.New("invalid email domain")
	ErrSuffixMismatch     = errors.New("email suffix does not match the requested role")
	ErrSignupUnavailable  = errors.New("signup requires the remote store")
)

// UserStore is the account surface AuthService needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// ModeSource reports the catalog operating mode, which decides whether
// credentials can be verified against the remote store.
type ModeSource interface {
	Mode() catalog.Mode
}

// Claims is the JWT payload issued after login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService is the credential-verification boundary in front of the role
// rule. The role is derived from the email suffix only after the credentials
// pass.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, role domain.Role, err error)
	SignUp(ctx context.Context, email, password, fullName string, role domain.Role) (*domain.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	users        UserStore
	mode         ModeSource
	jwtSecret    string
	accessExpiry time.Duration
}

func NewAuthService(users UserStore, mode ModeSource, jwtSecret string, accessExpiry time.Duration) AuthService {
	return &authService{
		users:        users,
		mode:         mode,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

// Login verifies credentials and derives the dashboard role. In live mode
// accounts are looked up in the remote store and the bcrypt hash checked. In
// fallback mode there is no user table to consult, so any non-empty password
// is accepted for a valid-domain demo address.
func (s *authService) Login(ctx context.Context, email, password string) (string, domain.Role, error) {
	role := ResolveRole(email)
	if role == domain.RoleInvalid {
		return "", domain.RoleInvalid, ErrInvalidDomain
	}
	if password == "" {
		return "", domain.RoleInvalid, ErrInvalidCredentials
	}

	if s.mode.Mode() == catalog.ModeLive {
		user, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return "", domain.RoleInvalid, ErrInvalidCredentials
			}
			return "", domain.RoleInvalid, fmt.Errorf("failed to look up user: %w", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return "", domain.RoleInvalid, ErrInvalidCredentials
		}
	}

	token, err := s.issueToken(email, role)
	if err != nil {
		return "", domain.RoleInvalid, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, role, nil
}

// SignUp creates an account whose email suffix matches the requested role.
// Accounts live only in the remote store; fallback mode has nowhere to put
// them.
func (s *authService) SignUp(ctx context.Context, email, password, fullName string, role domain.Role) (*domain.User, error) {
	suffix, ok := SuffixForRole(role)
	if !ok || role == domain.RoleAdmin {
		return nil, fmt.Errorf("%w: %s", ErrSuffixMismatch, role)
	}
	if ResolveRole(email) != role {
		return nil, fmt.Errorf("%w: %s accounts need a %s address", ErrSuffixMismatch, role, suffix)
	}
	if s.mode.Mode() != catalog.ModeLive {
		return nil, ErrSignupUnavailable
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// ValidateToken parses and verifies a token issued by Login.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func (s *authService) issueToken(email string, role domain.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
