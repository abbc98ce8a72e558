package auth

import (
	"context"
	"errors"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     *Admin    `json:"admin"`
}

type Service struct {
	repo   *Repository
	tokens *Tokens
}

func NewService(repo *Repository, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(admin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}
