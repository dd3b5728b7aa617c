package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/registration"
	"github.com/rmess/messd/internal/domain/tenant"
	"github.com/rmess/messd/internal/domain/user"
	"github.com/rmess/messd/internal/port/statestore"
)

// RegistrationService runs the tenant onboarding workflow. Approval is the
// tenant-provisioning boundary: the only operation that mints a new tenant.
type RegistrationService struct {
	store      statestore.Store
	bcryptCost int
	now        func() time.Time
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(store statestore.Store) *RegistrationService {
	return &RegistrationService{store: store, bcryptCost: bcrypt.DefaultCost, now: time.Now}
}

// Submit files a pending registration request. The applicant password is
// hashed immediately; the document never holds it in clear.
func (s *RegistrationService) Submit(ctx context.Context, req registration.SubmitRequest) (*registration.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	r := registration.Request{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Age:           req.Age,
		Profession:    req.Profession,
		ContactNumber: req.ContactNumber,
		Username:      req.Username,
		PasswordHash:  string(hash),
		Status:        registration.StatusPending,
		Timestamp:     s.now(),
	}

	err = s.store.Update(ctx, func(st *statestore.State) error {
		st.RegistrationRequests = append(st.RegistrationRequests, r)
		appendHistory(st, history.CategoryTenantManagement,
			fmt.Sprintf("New registration request from %s (%s).", req.Name, req.Username),
			history.ActorSystem, history.TenantSystem)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("registration submitted", "request_id", r.ID, "username", req.Username)
	return &r, nil
}

// Approve decides a pending request: it mints a new tenant with a snapshot
// of the default schedule and a new non-super admin owning it, then marks
// the request approved. Deciding a non-pending request is rejected.
func (s *RegistrationService) Approve(ctx context.Context, requestID, approverID string) (*tenant.Tenant, error) {
	var created tenant.Tenant
	err := s.store.Update(ctx, func(st *statestore.State) error {
		r := st.RequestByID(requestID)
		if r == nil {
			return fmt.Errorf("registration request %s: %w", requestID, domain.ErrNotFound)
		}
		if r.Status != registration.StatusPending {
			return fmt.Errorf("registration request %s already %s: %w", requestID, r.Status, domain.ErrConflict)
		}
		if st.UserByName(r.Username) != nil {
			return fmt.Errorf("username %q already taken: %w", r.Username, domain.ErrConflict)
		}

		newTenantID := uuid.NewString()
		include := false
		admin := user.User{
			ID:               uuid.NewString(),
			Name:             r.Username,
			Role:             user.RoleAdmin,
			TenantID:         newTenantID,
			PasswordHash:     r.PasswordHash,
			IncludeInBilling: &include,
			IsSuperAdmin:     false,
		}
		created = tenant.Tenant{
			ID:       newTenantID,
			Name:     fmt.Sprintf("%s's Mess", r.Name),
			OwnerID:  admin.ID,
			Settings: tenant.DefaultSettings(),
		}

		st.Users = append(st.Users, admin)
		st.Tenants = append(st.Tenants, created)
		r.Status = registration.StatusApproved
		appendHistory(st, history.CategoryTenantManagement,
			fmt.Sprintf("Approved request for %s. Created new tenant: %s.", r.Name, created.Name),
			approverID, history.TenantSystem)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("registration approved", "request_id", requestID, "tenant_id", created.ID)
	return &created, nil
}

// Reject marks a pending request rejected. Terminal states are final.
func (s *RegistrationService) Reject(ctx context.Context, requestID, approverID string) error {
	return s.store.Update(ctx, func(st *statestore.State) error {
		r := st.RequestByID(requestID)
		if r == nil {
			return fmt.Errorf("registration request %s: %w", requestID, domain.ErrNotFound)
		}
		if r.Status != registration.StatusPending {
			return fmt.Errorf("registration request %s already %s: %w", requestID, r.Status, domain.ErrConflict)
		}
		r.Status = registration.StatusRejected
		appendHistory(st, history.CategoryTenantManagement,
			fmt.Sprintf("Rejected registration request for %s.", r.Name),
			approverID, history.TenantSystem)
		return nil
	})
}

// List returns requests, optionally filtered by status.
func (s *RegistrationService) List(ctx context.Context, status registration.Status) ([]registration.Request, error) {
	var out []registration.Request
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, r := range st.RegistrationRequests {
			if status == "" || r.Status == status {
				r.PasswordHash = ""
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}
