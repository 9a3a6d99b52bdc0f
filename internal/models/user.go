package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is an account together with its credential row, if any.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string // empty when the user has no credential row yet
	CreatedAt    time.Time
}

// Info strips credential material from the user.
func (u *User) Info() *UserInfo {
	return &UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

type UserInfo struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AccessClaims are carried by login access tokens.
type AccessClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// ResetTicketClaims are carried by the verified ticket issued after a successful OTP check.
// The ID (jti) is bound to the reset record it was issued for.
type ResetTicketClaims struct {
	jwt.RegisteredClaims
}
