package store

import (
	"context"
	"errors"
	"time"

	"veggiemarket/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// Users provides account lookups for the credential-verification boundary.
type Users struct {
	client *Client
}

func NewUsers(client *Client) *Users {
	return &Users{client: client}
}

// FindByEmail fetches one account by email.
func (s *Users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row, err := s.client.From("users").
		Eq("email", email).
		Single(ctx)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userFromRow(row), nil
}

// Create inserts a new account.
func (s *Users) Create(ctx context.Context, user *domain.User) error {
	existing, err := s.FindByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if existing != nil {
		return ErrUserAlreadyExists
	}

	return s.client.Insert("users", Row{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"full_name":     user.FullName,
		"role":          string(user.Role),
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}).Exec(ctx)
}

// Touch bumps an account's updated_at, for example after a profile change.
func (s *Users) Touch(ctx context.Context, email string) error {
	_, err := s.client.Update("users", Row{
		"updated_at": time.Now().UTC(),
	}).Eq("email", email).Exec(ctx)
	return err
}

func userFromRow(row Row) *domain.User {
	return &domain.User{
		ID:           asUUID(row["id"]),
		Email:        asString(row["email"]),
		PasswordHash: asString(row["password_hash"]),
		FullName:     asString(row["full_name"]),
		Role:         domain.Role(asString(row["role"])),
		CreatedAt:    asTime(row["created_at"]),
		UpdatedAt:    asTime(row["updated_at"]),
	}
}
