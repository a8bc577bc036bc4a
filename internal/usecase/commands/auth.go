package commands

import (
	"context"

	"bookmarket/internal/domain/user"
	"bookmarket/internal/infra"
	"bookmarket/internal/pkg/clock"
	"bookmarket/internal/pkg/errs"
	"bookmarket/internal/pkg/jwt"
	"bookmarket/internal/pkg/password"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errs.New("user not found")
	ErrInvalidCredentials = errs.New("invalid email or password")
	ErrUserInactive       = errs.New("user account is inactive")
	ErrEmailTaken         = errs.New("email is already registered")
	ErrTokenGeneration    = errs.New("token generation failed")
)

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type AuthCommands interface {
	Register(ctx context.Context, input RegisterInput) (*user.User, error)
	Login(ctx context.Context, email, rawPassword string) (string, *user.User, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.User, error)
}

type authCommandsImpl struct {
	userRepo   UserRepository
	jwtService *jwt.Service
	clock      clock.Clock
}

func NewAuthCommands(userRepo UserRepository, jwtService *jwt.Service, clk clock.Clock) AuthCommands {
	return &authCommandsImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		clock:      clk,
	}
}

func (a *authCommandsImpl) Register(ctx context.Context, input RegisterInput) (*user.User, error) {
	email, err := user.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}
	pw, err := user.NewPassword(input.Password)
	if err != nil {
		return nil, err
	}

	hash, err := password.Hash(pw.Value())
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash password")
	}

	u := user.NewUser(email, hash, user.RoleCustomer, input.DisplayName, a.clock.Now())
	if err := a.userRepo.Create(ctx, u); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, errs.Wrap(err, "failed to persist user")
	}
	return u, nil
}

func (a *authCommandsImpl) Login(ctx context.Context, email, rawPassword string) (string, *user.User, error) {
	emailVO, err := user.NewEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	u, err := a.userRepo.FindByEmail(ctx, emailVO)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return "", nil, ErrUserInactive
	}

	if err := password.Compare(u.PasswordHash(), rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.jwtService.GenerateToken(u.ID(), u.Role())
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	if err := a.userRepo.UpdateLastLogin(ctx, u.ID(), a.clock.Now()); err != nil {
		return "", nil, errs.Wrap(err, "failed to record login")
	}

	return token, u, nil
}

func (a *authCommandsImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive() {
		return nil, ErrUserInactive
	}
	return u, nil
}
