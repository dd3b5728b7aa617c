package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/port/statestore"
)

// HistoryService is the read surface of the append-only audit log. Writes
// happen through appendHistory inside each mutating operation's store
// Update, so an action and its audit entry land in the same transition.
type HistoryService struct {
	store statestore.Store
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(store statestore.Store) *HistoryService {
	return &HistoryService{store: store}
}

// ListForTenant returns the tenant's audit entries, most recent first.
// System-tagged entries are included for the bootstrap tenant's viewer.
func (s *HistoryService) ListForTenant(ctx context.Context, tenantID string, includeSystem bool) ([]history.Entry, error) {
	var out []history.Entry
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, e := range st.History {
			if e.TenantID == tenantID || (includeSystem && e.TenantID == history.TenantSystem) {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// appendHistory adds an audit entry to the in-flight state transition.
// Every mutating operation calls this at least once inside its Update.
func appendHistory(st *statestore.State, cat history.Category, description, actorID, tenantID string) {
	st.History = append(st.History, history.Entry{
		ID:          uuid.NewString(),
		Type:        cat,
		Description: description,
		Timestamp:   time.Now(),
		ActorID:     actorID,
		TenantID:    tenantID,
	})
}
