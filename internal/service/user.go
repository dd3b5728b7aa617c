package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/user"
	"github.com/rmess/messd/internal/port/statestore"
)

// UserService is the user directory: account lookups, creation, edits and
// deletion, each audited. Billing-relevant edits on students are audited
// twice: once as an account edit, once as a financial event.
type UserService struct {
	store      statestore.Store
	bcryptCost int
}

// NewUserService creates a UserService.
func NewUserService(store statestore.Store) *UserService {
	return &UserService{store: store, bcryptCost: bcrypt.DefaultCost}
}

// FindByUsername returns the user with the given username.
func (s *UserService) FindByUsername(ctx context.Context, name string) (*user.User, error) {
	var found *user.User
	err := s.store.View(ctx, func(st *statestore.State) error {
		if u := st.UserByName(name); u != nil {
			cp := *u
			found = &cp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("user %q: %w", name, domain.ErrNotFound)
	}
	return found, nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	var found *user.User
	err := s.store.View(ctx, func(st *statestore.State) error {
		if u := st.UserByID(id); u != nil {
			cp := *u
			found = &cp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return found, nil
}

// ListByTenant returns all users belonging to the tenant.
func (s *UserService) ListByTenant(ctx context.Context, tenantID string) ([]user.User, error) {
	var out []user.User
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, u := range st.Users {
			if u.TenantID == tenantID {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}

// Add creates a new user in the tenant. Usernames are unique across the
// deployment; admin/cook accounts default to includeInBilling=false and
// students to zero arrears and security fee when unset.
func (s *UserService) Add(ctx context.Context, req user.CreateRequest, actorID, tenantID string) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Role:         req.Role,
		TenantID:     tenantID,
		PasswordHash: string(hash),
	}
	switch req.Role {
	case user.RoleStudent:
		u.Arrears = orZero(req.Arrears)
		u.SecurityFee = orZero(req.SecurityFee)
	case user.RoleAdmin, user.RoleCook:
		include := req.IncludeInBilling != nil && *req.IncludeInBilling
		u.IncludeInBilling = &include
		if req.Role == user.RoleAdmin {
			u.IsSuperAdmin = req.IsSuperAdmin
		}
	}

	err = s.store.Update(ctx, func(st *statestore.State) error {
		if st.UserByName(req.Name) != nil {
			return fmt.Errorf("username %q already taken: %w", req.Name, domain.ErrConflict)
		}
		st.Users = append(st.Users, u)
		appendHistory(st, history.CategoryUserManagement,
			fmt.Sprintf("Added new %s: %s.", u.Role, u.Name), actorID, tenantID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user added", "user_id", u.ID, "role", u.Role, "tenant_id", tenantID)
	return &u, nil
}

// Update applies a partial edit to a user. Role is immutable; financial
// fields on students produce an extra FinancialAdmin audit entry per field.
func (s *UserService) Update(ctx context.Context, id string, req user.UpdateRequest, actorID string) (*user.User, error) {
	var hash string
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}

	var updated user.User
	err := s.store.Update(ctx, func(st *statestore.State) error {
		u := st.UserByID(id)
		if u == nil {
			return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}

		var fields []string
		if req.Name != "" && req.Name != u.Name {
			if other := st.UserByName(req.Name); other != nil && other.ID != id {
				return fmt.Errorf("username %q already taken: %w", req.Name, domain.ErrConflict)
			}
			u.Name = req.Name
			fields = append(fields, "name")
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		if u.Role == user.RoleStudent {
			if req.Arrears != nil && (u.Arrears == nil || !req.Arrears.Equal(*u.Arrears)) {
				old := decimal.Zero
				if u.Arrears != nil {
					old = *u.Arrears
				}
				appendHistory(st, history.CategoryFinancialAdmin,
					fmt.Sprintf("Updated %s's arrears from %s to %s.", u.Name, old, req.Arrears),
					actorID, u.TenantID)
				u.Arrears = req.Arrears
				fields = append(fields, "arrears")
			}
			if req.SecurityFee != nil && (u.SecurityFee == nil || !req.SecurityFee.Equal(*u.SecurityFee)) {
				old := decimal.Zero
				if u.SecurityFee != nil {
					old = *u.SecurityFee
				}
				appendHistory(st, history.CategoryFinancialAdmin,
					fmt.Sprintf("Updated %s's security fee from %s to %s.", u.Name, old, req.SecurityFee),
					actorID, u.TenantID)
				u.SecurityFee = req.SecurityFee
				fields = append(fields, "securityFee")
			}
		}
		if (u.Role == user.RoleAdmin || u.Role == user.RoleCook) && req.IncludeInBilling != nil {
			u.IncludeInBilling = req.IncludeInBilling
			fields = append(fields, "includeInBilling")
		}

		appendHistory(st, history.CategoryUserManagement,
			fmt.Sprintf("Updated %s %s's details (%s).", u.Role, u.Name, strings.Join(fields, ", ")),
			actorID, u.TenantID)
		updated = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a user from the directory. The user's ledger entries are
// retained; the ledger is append-only and entries remain attributable.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	return s.store.Update(ctx, func(st *statestore.State) error {
		u := st.UserByID(id)
		if u == nil {
			return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		appendHistory(st, history.CategoryUserManagement,
			fmt.Sprintf("Deleted %s: %s.", u.Role, u.Name), actorID, u.TenantID)
		for i := range st.Users {
			if st.Users[i].ID == id {
				st.Users = append(st.Users[:i], st.Users[i+1:]...)
				break
			}
		}
		return nil
	})
}

// Authenticate verifies a username/password pair and returns the account.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (*user.User, error) {
	u, err := s.FindByUsername(ctx, name)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("bad credentials: %w", domain.ErrValidation)
	}
	return u, nil
}

// SetPassword replaces a user's password hash (admin CLI path).
func (s *UserService) SetPassword(ctx context.Context, name, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Update(ctx, func(st *statestore.State) error {
		u := st.UserByName(name)
		if u == nil {
			return fmt.Errorf("user %q: %w", name, domain.ErrNotFound)
		}
		u.PasswordHash = string(hash)
		appendHistory(st, history.CategoryUserManagement,
			fmt.Sprintf("Reset password for %s.", u.Name), history.ActorSystem, u.TenantID)
		return nil
	})
}

func orZero(d *decimal.Decimal) *decimal.Decimal {
	if d != nil {
		return d
	}
	zero := decimal.Zero
	return &zero
}
