// Package registration defines the tenant onboarding request and its
// lifecycle: pending, then terminally approved or rejected.
package registration

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a registration request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a tenant onboarding application. Approval is the only operation
// in the system that provisions a new tenant.
type Request struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Profession    string    `json:"profession"`
	ContactNumber string    `json:"contactNumber"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"passwordHash,omitempty"`
	Status        Status    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// SubmitRequest is the applicant input for a new registration.
type SubmitRequest struct {
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Profession    string `json:"profession"`
	ContactNumber string `json:"contactNumber"`
	Username      string `json:"username"`
	Password      string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the SubmitRequest is well formed.
func (r *SubmitRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Username == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if r.Age <= 0 {
		return errors.New("age must be positive")
	}
	return nil
}
