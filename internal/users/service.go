package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"resume-builder/internal/shared/auth"
	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

// dummyHash is compared against when the username is unknown so both paths cost one bcrypt check.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("not-a-real-password")
	return h
})

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in model.NewUser) (model.User, error) {
	if s == nil || s.Repo == nil {
		return model.User{}, errors.New("users service not configured")
	}
	if len(in.Password) > schema.MaxPasswordBytes {
		return model.User{}, &schema.ValidationError{Shape: "NewUser", Violations: []schema.Violation{
			{Path: "password", Reason: fmt.Sprintf("must be at most %d bytes", schema.MaxPasswordBytes)},
		}}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}
	account, err := s.Repo.Create(ctx, Account{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
	})
	if err != nil {
		return model.User{}, err
	}
	return account.Public(), nil
}

// Authenticate returns the user for valid credentials, or ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, in model.Credentials) (model.User, error) {
	if s == nil || s.Repo == nil {
		return model.User{}, errors.New("users service not configured")
	}
	account, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, ErrNotFound) {
		_ = auth.CheckPassword(dummyHash(), in.Password)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if err := auth.CheckPassword(account.PasswordHash, in.Password); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return account.Public(), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (model.User, error) {
	if s == nil || s.Repo == nil {
		return model.User{}, errors.New("users service not configured")
	}
	account, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return account.Public(), nil
}
