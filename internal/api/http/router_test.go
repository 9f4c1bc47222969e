package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "fabric-registry/internal/api/http"
	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
	"fabric-registry/internal/security"
	"fabric-registry/internal/service"
)

type apiEnv struct {
	router http.Handler
	tokens security.TokenManager
	store  fabric.Store
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	store := fabric.NewMemoryStore(nil)
	services := service.New(store, nil)
	tokens := security.NewTokenManager("test-secret", 60)
	return &apiEnv{
		router: api.NewHandler(services, tokens).Router(),
		tokens: tokens,
		store:  store,
	}
}

// do performs an authenticated JSON request as the given principal and
// decodes the response body into out when out is non-nil.
func (e *apiEnv) do(t *testing.T, principal, method, path string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if principal != "" {
		token, err := e.tokens.GenerateToken(domain.PrincipalID(principal))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if out != nil && rr.Code < 300 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}
	return rr
}

func (e *apiEnv) createUser(t *testing.T, principal, name string) domain.RecordID {
	t.Helper()
	var rec domain.Record
	rr := e.do(t, principal, http.MethodPost, "/api/v1/users",
		map[string]any{"payload": map[string]string{"name": name}}, &rec)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return rec.ID
}

func (e *apiEnv) bootstrapAdmin(t *testing.T, principal string, userID domain.RecordID, kinds ...domain.EntityKind) {
	t.Helper()
	for _, kind := range kinds {
		rr := e.do(t, principal, http.MethodPost, fmt.Sprintf("/api/v1/kinds/%s/administrators", kind),
			map[string]any{"entity_id": userID, "bootstrap": true}, nil)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	env := newAPIEnv(t)

	rr := env.do(t, "", http.MethodPost, "/api/v1/users",
		map[string]any{"payload": map[string]string{"name": "Alice"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_RejectsInvalidToken(t *testing.T) {
	env := newAPIEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kinds/user/accepted", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_UserLifecycle(t *testing.T) {
	env := newAPIEnv(t)
	userID := env.createUser(t, "alice", "Alice")

	var rec domain.Record
	rr := env.do(t, "alice", http.MethodGet, "/api/v1/entities/"+string(userID), nil, &rec)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID, rec.ID)

	var updated domain.Record
	rr = env.do(t, "alice", http.MethodPut, "/api/v1/entities/"+string(userID),
		map[string]any{"payload": map[string]string{"name": "Alice Updated"}}, &updated)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, userID, updated.ID)

	var revisions []domain.Record
	rr = env.do(t, "alice", http.MethodGet, "/api/v1/entities/"+string(userID)+"/revisions", nil, &revisions)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, revisions, 2)

	var status domain.Status
	rr = env.do(t, "alice", http.MethodGet, "/api/v1/entities/"+string(userID)+"/status", nil, &status)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StatusPending, status.Type)
}

func TestAPI_ErrorTaxonomyMapping(t *testing.T) {
	env := newAPIEnv(t)
	adminUser := env.createUser(t, "admin", "Admin")
	env.bootstrapAdmin(t, "admin", adminUser, domain.KindUser)
	userID := env.createUser(t, "alice", "Alice")
	env.createUser(t, "mallory", "Mallory")

	// Unknown entity id.
	rr := env.do(t, "alice", http.MethodGet, "/api/v1/entities/absent", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Not the author.
	rr = env.do(t, "mallory", http.MethodPut, "/api/v1/entities/"+string(userID),
		map[string]any{"payload": map[string]string{"name": "Hijacked"}}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// User profiles cannot be deleted.
	rr = env.do(t, "alice", http.MethodDelete, "/api/v1/entities/"+string(userID), nil, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Duplicate user profile.
	rr = env.do(t, "alice", http.MethodPost, "/api/v1/users",
		map[string]any{"payload": map[string]string{"name": "Alice Again"}}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAPI_StatusModeration(t *testing.T) {
	env := newAPIEnv(t)
	adminUser := env.createUser(t, "admin", "Admin")
	env.bootstrapAdmin(t, "admin", adminUser, domain.KindUser)
	userID := env.createUser(t, "alice", "Alice")

	// Non-administrators cannot moderate.
	rr := env.do(t, "alice", http.MethodPost, "/api/v1/entities/"+string(userID)+"/status",
		map[string]any{"status_type": "accepted"}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, "admin", http.MethodPost, "/api/v1/entities/"+string(userID)+"/status",
		map[string]any{"status_type": "accepted"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var accepted []domain.RecordID
	rr = env.do(t, "alice", http.MethodGet, "/api/v1/kinds/user/accepted", nil, &accepted)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, accepted, userID)

	// Temporary suspension via duration.
	rr = env.do(t, "admin", http.MethodPost, "/api/v1/entities/"+string(userID)+"/suspend",
		map[string]any{"reason": "spam", "duration_in_days": 7}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var status domain.Status
	rr = env.do(t, "admin", http.MethodGet, "/api/v1/entities/"+string(userID)+"/status", nil, &status)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StatusSuspendedTemporarily, status.Type)
	require.NotNil(t, status.Until)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *status.Until, time.Minute)

	// Not expired yet.
	var result map[string]bool
	rr = env.do(t, "admin", http.MethodPost, "/api/v1/entities/"+string(userID)+"/unsuspend-if-expired", nil, &result)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, result["unsuspended"])

	rr = env.do(t, "admin", http.MethodPost, "/api/v1/entities/"+string(userID)+"/unsuspend", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var history []domain.Record
	rr = env.do(t, "admin", http.MethodGet, "/api/v1/entities/"+string(userID)+"/status/history", nil, &history)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, history, 4) // pending, accepted, suspended, accepted
}

func TestAPI_AdministratorEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	adminUser := env.createUser(t, "admin", "Admin")
	env.bootstrapAdmin(t, "admin", adminUser, domain.KindUser)
	bobUser := env.createUser(t, "bob", "Bob")

	// Non-administrators cannot add.
	rr := env.do(t, "bob", http.MethodPost, "/api/v1/kinds/user/administrators",
		map[string]any{"entity_id": bobUser}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, "admin", http.MethodPost, "/api/v1/kinds/user/administrators",
		map[string]any{"entity_id": bobUser}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var check map[string]bool
	rr = env.do(t, "admin", http.MethodGet, "/api/v1/kinds/user/administrators/"+string(bobUser), nil, &check)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, check["is_administrator"])

	var admins []domain.RecordID
	rr = env.do(t, "admin", http.MethodGet, "/api/v1/kinds/user/administrators", nil, &admins)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.ElementsMatch(t, []domain.RecordID{adminUser, bobUser}, admins)

	rr = env.do(t, "admin", http.MethodDelete, "/api/v1/kinds/user/administrators/"+string(bobUser), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestAPI_OrganizationMembership(t *testing.T) {
	env := newAPIEnv(t)
	adminUser := env.createUser(t, "admin", "Admin")
	env.bootstrapAdmin(t, "admin", adminUser, domain.KindOrganization)
	env.createUser(t, "alice", "Alice")
	bobUser := env.createUser(t, "bob", "Bob")

	var org domain.Record
	rr := env.do(t, "alice", http.MethodPost, "/api/v1/organizations",
		map[string]any{"payload": map[string]string{"name": "Fabric Collective"}}, &org)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, "admin", http.MethodPost, "/api/v1/entities/"+string(org.ID)+"/status",
		map[string]any{"status_type": "accepted"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, "alice", http.MethodPost, "/api/v1/organizations/"+string(org.ID)+"/members",
		map[string]any{"user_id": bobUser}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var check map[string]bool
	rr = env.do(t, "alice", http.MethodGet,
		"/api/v1/organizations/"+string(org.ID)+"/members/"+string(bobUser), nil, &check)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, check["is_member"])

	var members []domain.RecordID
	rr = env.do(t, "alice", http.MethodGet, "/api/v1/organizations/"+string(org.ID)+"/members", nil, &members)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, members, 2)

	rr = env.do(t, "alice", http.MethodPost, "/api/v1/organizations/"+string(org.ID)+"/coordinators",
		map[string]any{"user_id": bobUser}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, "bob", http.MethodPost, "/api/v1/organizations/"+string(org.ID)+"/leave", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var coordinators []domain.RecordID
	rr = env.do(t, "alice", http.MethodGet, "/api/v1/organizations/"+string(org.ID)+"/coordinators", nil, &coordinators)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, coordinators, 1)
}

func TestAPI_MetricsUnauthenticated(t *testing.T) {
	env := newAPIEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
