package models

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleCook     = "cook"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Rating       float64   `json:"rating"`
	RatingCount  int       `json:"rating_count"`
	ReviewCount  int       `json:"review_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if len(strings.TrimSpace(u.Username)) < 3 {
		return errors.New("username too short")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.Role != RoleCustomer && u.Role != RoleCook {
		return errors.New("unknown role")
	}
	return nil
}
