package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/homecook/homecook-backend/internal/auth"
	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	users repo.Users
	wal   repo.Wallets
	tm    *auth.TokenManager
}

func NewUserService(u repo.Users, w repo.Wallets, tm *auth.TokenManager) *UserService {
	return &UserService{users: u, wal: w, tm: tm}
}

// Register creates the account and its wallet in one go, so every user has a
// wallet before their first payment touches it.
func (s *UserService) Register(ctx context.Context, username, email, password, role string) (models.User, error) {
	u := models.User{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Role:     role,
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if len(password) < 8 {
		return models.User{}, errors.New("password too short")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	created, err := s.users.Create(ctx, u.Username, u.Email, hash, u.Role)
	if err != nil {
		return models.User{}, err
	}
	if _, err := s.wal.GetOrCreate(ctx, created.ID); err != nil {
		return models.User{}, err
	}
	return created, nil
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *UserService) Login(ctx context.Context, email, password string) (TokenPair, models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		return TokenPair{}, models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, models.User{}, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return TokenPair{}, models.User{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, models.User, error) {
	claims, isRefresh, err := s.tm.ParseAny(refreshToken)
	if err != nil || !isRefresh {
		return TokenPair{}, models.User{}, ErrInvalidCredentials
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, models.User{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *UserService) issue(u models.User) (TokenPair, models.User, error) {
	access, refresh, exp, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, models.User{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}
