package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// RegisterRequest is the self-service registration payload.
type RegisterRequest struct {
	Username   string   `json:"username" validate:"required,max=64"`
	Password   string   `json:"password" validate:"required"`
	Role       UserRole `json:"role" validate:"required"`
	FirstName  string   `json:"firstName" validate:"required"`
	MiddleName *string  `json:"middleName"`
	LastName   string   `json:"lastName" validate:"required"`
	Suffix     *string  `json:"suffix"`
	Email      *string  `json:"email" validate:"omitempty,email"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// AdminStatus tells the registration screen whether the bootstrap admin exists.
type AdminStatus struct {
	HasApprovedAdmins  bool  `json:"hasApprovedAdmins"`
	ApprovedAdminCount int64 `json:"approvedAdminCount"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Role       UserRole `json:"role"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Email      *string  `json:"email,omitempty"`
	IsApproved bool     `json:"isApproved"`
	IsActive   bool     `json:"isActive"`
	Namespace  string   `json:"namespace"`
}

// NewUserInfo projects a user into its public representation.
func NewUserInfo(u User) UserInfo {
	return UserInfo{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		IsApproved: u.IsApproved,
		IsActive:   u.IsActive,
		Namespace:  Namespace(u.Role),
	}
}

// AccountStatus is the cached slice of a user the auth gate needs per request.
type AccountStatus struct {
	IsApproved bool     `json:"isApproved"`
	IsActive   bool     `json:"isActive"`
	Role       UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
