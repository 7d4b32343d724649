package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")
	ErrInvalidRole = errors.New("invalid role")

	msgAlreadyExists = "User already exists"
)

type (
	Repository interface {
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		QueryAllAccounts(ctx context.Context) ([]Account, error)
		UpdateAccountRole(ctx context.Context, id string, role Role) (Account, error)
		UpdateAccountRoleByEmail(ctx context.Context, email string, role Role) (Account, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an Account for na.Email if none exists yet; otherwise it
// returns the existing Account with an informational message. A concurrent
// duplicate insert loses against the unique email constraint and falls back
// to the existing record.
func (svc *Service) Register(ctx context.Context, na NewAccount) (RegisterResult, error) {
	if acc, err := svc.repo.GetAccountByEmail(ctx, na.Email); err == nil {
		return RegisterResult{Account: acc, Message: msgAlreadyExists}, nil
	} else if err != ErrNotFound {
		return RegisterResult{}, err
	}

	acc, err := svc.repo.CreateAccount(ctx, Account{
		ID:        uuid.NewString(),
		Email:     na.Email,
		Name:      na.Name,
		Photo:     na.Photo,
		Role:      RoleStudent,
		CreatedAt: time.Now().UTC(),
	})
	if err == ErrEmailExists {
		// lost the race; the existing record wins
		if acc, err = svc.repo.GetAccountByEmail(ctx, na.Email); err == nil {
			return RegisterResult{Account: acc, Message: msgAlreadyExists}, nil
		}
	}
	if err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{Account: acc, Created: true}, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Account, error) {
	return svc.repo.QueryAllAccounts(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, email)
}

// PromoteAdmin forces the account's role to admin.
func (svc *Service) PromoteAdmin(ctx context.Context, id string) (Account, error) {
	return svc.repo.UpdateAccountRole(ctx, id, RoleAdmin)
}

// HasRole reports whether the account registered under email currently
// holds the given role. The role is always re-read from the store so a
// demotion takes effect immediately, regardless of any credential issued
// before it.
func (svc *Service) HasRole(ctx context.Context, email string, role Role) (bool, error) {
	acc, err := svc.repo.GetAccountByEmail(ctx, email)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return acc.Role == role, nil
}
