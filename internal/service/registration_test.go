package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/registration"
)

func submitRequest() registration.SubmitRequest {
	return registration.SubmitRequest{
		Name:          "Dana",
		Age:           28,
		Profession:    "Engineer",
		ContactNumber: "555-0100",
		Username:      "dana",
		Password:      "secret",
	}
}

func newTestRegistrationService(store *memStore) *RegistrationService {
	svc := NewRegistrationService(store)
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestSubmitRegistration(t *testing.T) {
	store := newMemStore()
	svc := newTestRegistrationService(store)

	r, err := svc.Submit(context.Background(), submitRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if r.Status != registration.StatusPending {
		t.Errorf("status = %s, want pending", r.Status)
	}
	if r.PasswordHash == "" || r.PasswordHash == "secret" {
		t.Error("password not hashed at submit")
	}
}

func TestSubmitRegistrationValidation(t *testing.T) {
	store := newMemStore()
	svc := newTestRegistrationService(store)

	req := submitRequest()
	req.Username = ""
	if _, err := svc.Submit(context.Background(), req); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Submit() error = %v, want ErrValidation", err)
	}
}

func TestApproveProvisionsTenant(t *testing.T) {
	store := newMemStore()
	svc := newTestRegistrationService(store)
	ctx := context.Background()

	r, err := svc.Submit(ctx, submitRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	created, err := svc.Approve(ctx, r.ID, "admin-1")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if created.Name != "Dana's Mess" {
		t.Errorf("tenant name = %q, want \"Dana's Mess\"", created.Name)
	}
	if created.Settings == nil {
		t.Error("new tenant has no settings snapshot")
	}

	owner := store.st.UserByID(created.OwnerID)
	if owner == nil {
		t.Fatal("owner admin not created")
	}
	if owner.TenantID != created.ID {
		t.Errorf("owner tenant = %s, want %s", owner.TenantID, created.ID)
	}
	if owner.IsSuperAdmin {
		t.Error("provisioned admin is super-admin, want regular admin")
	}
	if owner.Billable() {
		t.Error("provisioned admin is billable by default")
	}

	if got := store.st.RequestByID(r.ID).Status; got != registration.StatusApproved {
		t.Errorf("request status = %s, want approved", got)
	}
}

func TestApproveIsTerminal(t *testing.T) {
	store := newMemStore()
	svc := newTestRegistrationService(store)
	ctx := context.Background()

	r, err := svc.Submit(ctx, submitRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := svc.Approve(ctx, r.ID, "admin-1"); err != nil {
		t.Fatalf("first Approve() error = %v", err)
	}

	if _, err := svc.Approve(ctx, r.ID, "admin-1"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second Approve() error = %v, want ErrConflict", err)
	}
	if err := svc.Reject(ctx, r.ID, "admin-1"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Reject() after approve error = %v, want ErrConflict", err)
	}

	// Only one tenant was provisioned beyond the bootstrap tenant.
	if got := len(store.st.Tenants); got != 2 {
		t.Errorf("tenants = %d, want 2", got)
	}
}

func TestApproveDuplicateUsername(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "dana")
	svc := newTestRegistrationService(store)
	ctx := context.Background()

	r, err := svc.Submit(ctx, submitRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := svc.Approve(ctx, r.ID, "admin-1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Approve() error = %v, want ErrConflict on taken username", err)
	}
	// The request stays pending so it can be rejected or retried later.
	if got := store.st.RequestByID(r.ID).Status; got != registration.StatusPending {
		t.Errorf("request status = %s, want pending", got)
	}
}

func TestRejectRegistration(t *testing.T) {
	store := newMemStore()
	svc := newTestRegistrationService(store)
	ctx := context.Background()

	r, err := svc.Submit(ctx, submitRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := svc.Reject(ctx, r.ID, "admin-1"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if got := store.st.RequestByID(r.ID).Status; got != registration.StatusRejected {
		t.Errorf("status = %s, want rejected", got)
	}
	if got := len(store.st.Tenants); got != 1 {
		t.Errorf("tenants = %d, want 1 (no provisioning on reject)", got)
	}

	if err := svc.Reject(ctx, "missing", "admin-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Reject(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListRedactsHashes(t *testing.T) {
	store := newMemStore()
	svc := newTestRegistrationService(store)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	list, err := svc.List(ctx, registration.StatusPending)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("pending requests = %d, want 1", len(list))
	}
	if list[0].PasswordHash != "" {
		t.Error("List() leaked password hash")
	}
}
