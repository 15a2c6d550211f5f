package models

import "time"

// UserRole is the role an account acts under. Each role is confined to its own
// route namespace.
type UserRole string

const (
	RoleFieldCollector UserRole = "field_collector"
	RoleLabTech        UserRole = "lab_tech"
	RoleAdmin          UserRole = "admin"
	RoleExtExpert      UserRole = "ext_expert"
	RolePatient        UserRole = "patient"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	_, ok := roleNamespaces[r]
	return ok
}

// User is an application account.
type User struct {
	ID           string     `bson:"_id" db:"id" json:"id"`
	Username     string     `bson:"username" db:"username" json:"username"`
	PasswordHash string     `bson:"password" db:"password_hash" json:"-"`
	Role         UserRole   `bson:"role" db:"role" json:"role"`
	FirstName    string     `bson:"firstName" db:"first_name" json:"firstName"`
	MiddleName   *string    `bson:"middleName,omitempty" db:"middle_name" json:"middleName,omitempty"`
	LastName     string     `bson:"lastName" db:"last_name" json:"lastName"`
	Suffix       *string    `bson:"suffix,omitempty" db:"suffix" json:"suffix,omitempty"`
	Email        *string    `bson:"email,omitempty" db:"email" json:"email,omitempty"`
	PatientID    *string    `bson:"patientId,omitempty" db:"patient_id" json:"patientId,omitempty"`
	IsApproved   bool       `bson:"isApproved" db:"is_approved" json:"isApproved"`
	IsActive     bool       `bson:"isActive" db:"is_active" json:"isActive"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" db:"updated_at" json:"updatedAt"`
}

// DisplayName joins the name parts the way they are printed on reports.
func (u User) DisplayName() string {
	return JoinName(u.FirstName, u.MiddleName, u.LastName, u.Suffix)
}

// UserAction is an administrator decision applied to an account.
type UserAction string

const (
	UserActionApprove    UserAction = "approve"
	UserActionReject     UserAction = "reject"
	UserActionActivate   UserAction = "activate"
	UserActionDeactivate UserAction = "deactivate"
)

// Valid reports whether the action is recognised.
func (a UserAction) Valid() bool {
	switch a {
	case UserActionApprove, UserActionReject, UserActionActivate, UserActionDeactivate:
		return true
	}
	return false
}

// UserStatusUpdate is the field-level change an action writes. Nil fields are left
// untouched.
type UserStatusUpdate struct {
	IsApproved *bool
	IsActive   *bool
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	IsApproved *bool
	IsActive   *bool
	Search     string
	Page       int
	PageSize   int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
