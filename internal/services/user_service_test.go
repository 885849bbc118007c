package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/homecook/homecook-backend/internal/auth"
	"github.com/homecook/homecook-backend/internal/models"
	"github.com/homecook/homecook-backend/internal/repository/memory"
)

func newUserService(t *testing.T) (*UserService, memory.Repositories) {
	t.Helper()
	repos := memory.NewRepositories()
	tm := auth.NewTokenManager("test-access", "test-refresh", "homecook-test", 15*time.Minute, 24*time.Hour)
	return NewUserService(repos.Users, repos.Wallets, tm), repos
}

func TestRegisterCreatesWallet(t *testing.T) {
	us, repos := newUserService(t)
	ctx := context.Background()

	u, err := us.Register(ctx, "chef_ada", "Ada@Example.com", "supersecret", models.RoleCook)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	w, err := repos.Wallets.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("wallet missing after register: %v", err)
	}
	if w.BalanceCents != 0 || w.PendingCents != 0 {
		t.Errorf("new wallet not empty: %+v", w)
	}
}

func TestRegisterValidation(t *testing.T) {
	us, _ := newUserService(t)
	ctx := context.Background()

	if _, err := us.Register(ctx, "ab", "a@b.com", "supersecret", models.RoleCustomer); err == nil {
		t.Error("short username accepted")
	}
	if _, err := us.Register(ctx, "valid_name", "not-an-email", "supersecret", models.RoleCustomer); err == nil {
		t.Error("bad email accepted")
	}
	if _, err := us.Register(ctx, "valid_name", "a@b.com", "short", models.RoleCustomer); err == nil {
		t.Error("short password accepted")
	}
	if _, err := us.Register(ctx, "valid_name", "a@b.com", "supersecret", "admin"); err == nil {
		t.Error("unknown role accepted")
	}
}

func TestLoginAndRefresh(t *testing.T) {
	us, _ := newUserService(t)
	ctx := context.Background()

	if _, err := us.Register(ctx, "hungry_bob", "bob@example.com", "supersecret", models.RoleCustomer); err != nil {
		t.Fatal(err)
	}

	pair, u, err := us.Login(ctx, "bob@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn <= 0 {
		t.Fatalf("token pair incomplete: %+v", pair)
	}
	if u.Role != models.RoleCustomer {
		t.Errorf("role: %s", u.Role)
	}

	if _, _, err := us.Login(ctx, "bob@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, _, err := us.Login(ctx, "nobody@example.com", "supersecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}

	next, _, err := us.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.AccessToken == "" {
		t.Error("refresh returned empty access token")
	}
	// An access token must not pass as a refresh token.
	if _, _, err := us.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("refresh with access token: got %v", err)
	}
}
