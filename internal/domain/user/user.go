// Package user defines the account model for students, admins and cooks.
package user

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Role discriminates the account variants. It is immutable after creation.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleCook    Role = "cook"
)

// ValidRoles is the set of all valid account roles.
var ValidRoles = map[Role]bool{
	RoleStudent: true,
	RoleAdmin:   true,
	RoleCook:    true,
}

// User is a tagged variant keyed on Role. The pointer fields belong to one
// variant each: Arrears and SecurityFee are student-only, IncludeInBilling is
// admin/cook-only, IsSuperAdmin is admin-only. Code that branches on
// role-specific behavior must switch on Role rather than probe the pointers.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	TenantID     string `json:"tenantId"`
	PasswordHash string `json:"passwordHash,omitempty"`

	// Student variant.
	Arrears     *decimal.Decimal `json:"arrears,omitempty"`
	SecurityFee *decimal.Decimal `json:"securityFee,omitempty"`

	// Admin and cook variants.
	IncludeInBilling *bool `json:"includeInBilling,omitempty"`

	// Admin variant.
	IsSuperAdmin bool `json:"isSuperAdmin,omitempty"`
}

// Billable reports whether this user's meal attendance and misc-charge
// exposure generate ledger entries. Students always bill; admins and cooks
// opt in through IncludeInBilling.
func (u *User) Billable() bool {
	switch u.Role {
	case RoleStudent:
		return true
	case RoleAdmin, RoleCook:
		return u.IncludeInBilling != nil && *u.IncludeInBilling
	default:
		return false
	}
}

// Redacted returns a copy safe for API responses, with the password hash
// cleared.
func (u User) Redacted() User {
	u.PasswordHash = ""
	return u
}

// CreateRequest is the input for adding a new user to the directory.
type CreateRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
	Role     Role   `json:"role"`

	Arrears          *decimal.Decimal `json:"arrears,omitempty"`
	SecurityFee      *decimal.Decimal `json:"securityFee,omitempty"`
	IncludeInBilling *bool            `json:"includeInBilling,omitempty"`
	IsSuperAdmin     bool             `json:"isSuperAdmin,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if !ValidRoles[r.Role] {
		return errors.New("invalid role: must be student, admin, or cook")
	}
	return nil
}

// UpdateRequest is the input for editing an existing user. Role is absent on
// purpose: it is immutable after creation.
type UpdateRequest struct {
	Name             string           `json:"name,omitempty"`
	Password         string           `json:"password,omitempty"` //nolint:gosec // request field
	Arrears          *decimal.Decimal `json:"arrears,omitempty"`
	SecurityFee      *decimal.Decimal `json:"securityFee,omitempty"`
	IncludeInBilling *bool            `json:"includeInBilling,omitempty"`
}
