//go:build unit || e2e

package builder

import (
	"time"

	"bookmarket/internal/domain/user"
)

type UserBuilder struct {
	Email       string
	Password    string
	Role        string
	DisplayName string
	CreatedAt   time.Time
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		Email:       "reader@example.com",
		Password:    "correct-horse",
		Role:        "customer",
		DisplayName: "Reader",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(b)
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

func (b *UserBuilder) WithRole(role string) *UserBuilder {
	b.Role = role
	return b
}

func (b *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(b.Email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(b.Role)
	if err != nil {
		return nil, err
	}
	if _, err := user.NewPassword(b.Password); err != nil {
		return nil, err
	}
	return user.NewUser(email, "hashed:"+b.Password, role, b.DisplayName, b.CreatedAt), nil
}
