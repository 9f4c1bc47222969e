package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
	"fabric-registry/internal/service"
)

// testClock advances by a second on every read so revision timestamps are
// strictly ordered, and can be pinned for expiry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	services *service.Services
	store    fabric.Store
	clock    *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := newTestClock()
	store := fabric.NewMemoryStore(clock.Now)
	return &testEnv{
		services: service.New(store, clock.Now),
		store:    store,
		clock:    clock,
	}
}

func asPrincipal(p string) context.Context {
	return fabric.WithPrincipal(context.Background(), domain.PrincipalID(p))
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

// createUser creates a user profile for the principal and returns its
// original id.
func (e *testEnv) createUser(t *testing.T, principal, name string) domain.RecordID {
	t.Helper()
	rec, err := e.services.Entities.Create(asPrincipal(principal), domain.KindUser, payload(t, map[string]string{"name": name}))
	require.NoError(t, err)
	return rec.ID
}

// bootstrapAdmin registers the principal's user profile as an
// administrator of the given kinds.
func (e *testEnv) bootstrapAdmin(t *testing.T, principal string, userID domain.RecordID, kinds ...domain.EntityKind) {
	t.Helper()
	for _, kind := range kinds {
		require.NoError(t, e.services.Admins.Register(asPrincipal(principal), kind, userID))
	}
}

// createAcceptedOrg creates an organization for the principal and moves it
// to Accepted using the admin principal.
func (e *testEnv) createAcceptedOrg(t *testing.T, principal, admin, name string) domain.RecordID {
	t.Helper()
	rec, err := e.services.Entities.Create(asPrincipal(principal), domain.KindOrganization, payload(t, map[string]string{"name": name}))
	require.NoError(t, err)
	_, err = e.services.Status.Update(asPrincipal(admin), rec.ID, domain.AcceptedStatus())
	require.NoError(t, err)
	return rec.ID
}
