package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/service"
)

func TestResolver_NoRevisionsReturnsOriginal(t *testing.T) {
	mockStore := new(MockStore)
	resolver := service.NewResolver(mockStore, nil)
	ctx := context.Background()

	original := &domain.Record{ID: "orig", Kind: domain.KindUser}
	mockStore.On("Entries", ctx, "orig", domain.TagEntityUpdates).Return([]domain.IndexEntry{}, nil)
	mockStore.On("GetRecord", ctx, domain.RecordID("orig")).Return(original, nil)

	rec, err := resolver.Latest(ctx, "orig", domain.TagEntityUpdates)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordID("orig"), rec.ID)
	mockStore.AssertExpectations(t)
}

func TestResolver_MaxTimestampWins(t *testing.T) {
	mockStore := new(MockStore)
	resolver := service.NewResolver(mockStore, nil)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.IndexEntry{
		{ID: "e1", Subject: "orig", Target: "rev1", Tag: domain.TagEntityUpdates, CreatedAt: base},
		{ID: "e2", Subject: "orig", Target: "rev2", Tag: domain.TagEntityUpdates, CreatedAt: base.Add(time.Minute)},
	}
	latest := &domain.Record{ID: "rev2", Kind: domain.KindUser}
	mockStore.On("Entries", ctx, "orig", domain.TagEntityUpdates).Return(entries, nil)
	mockStore.On("GetRecord", ctx, domain.RecordID("rev2")).Return(latest, nil)

	rec, err := resolver.Latest(ctx, "orig", domain.TagEntityUpdates)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordID("rev2"), rec.ID)
}

func TestResolver_TieBreakIsDeterministic(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.IndexEntry{
		{ID: "e1", Subject: "orig", Target: "rev-a", Tag: domain.TagEntityUpdates, CreatedAt: base},
		{ID: "e2", Subject: "orig", Target: "rev-b", Tag: domain.TagEntityUpdates, CreatedAt: base},
	}

	// Same entry set in either order resolves the same winner.
	for _, ordered := range [][]domain.IndexEntry{entries, {entries[1], entries[0]}} {
		mockStore := new(MockStore)
		resolver := service.NewResolver(mockStore, nil)
		mockStore.On("Entries", ctx, "orig", domain.TagEntityUpdates).Return(ordered, nil)

		id, err := resolver.LatestID(ctx, "orig", domain.TagEntityUpdates)
		require.NoError(t, err)
		assert.Equal(t, domain.RecordID("rev-b"), id)
	}
}

func TestResolver_MissingRevisionTarget(t *testing.T) {
	mockStore := new(MockStore)
	resolver := service.NewResolver(mockStore, nil)
	ctx := context.Background()

	entries := []domain.IndexEntry{
		{ID: "e1", Subject: "orig", Target: "rev-gone", Tag: domain.TagEntityUpdates, CreatedAt: time.Now()},
	}
	mockStore.On("Entries", ctx, "orig", domain.TagEntityUpdates).Return(entries, nil)
	mockStore.On("GetRecord", ctx, domain.RecordID("rev-gone")).Return(nil, domain.NotFoundf("record rev-gone"))

	_, err := resolver.Latest(ctx, "orig", domain.TagEntityUpdates)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "missing revision target")
}

func TestResolver_RevisionsOriginalFirst(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t, "alice", "Alice")

	_, err := env.services.Entities.Update(asPrincipal("alice"), userID, payload(t, map[string]string{"name": "Alice B"}))
	require.NoError(t, err)
	_, err = env.services.Entities.Update(asPrincipal("alice"), userID, payload(t, map[string]string{"name": "Alice C"}))
	require.NoError(t, err)

	records, err := env.services.Entities.Revisions(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, userID, records[0].ID)
	assert.JSONEq(t, `{"name":"Alice C"}`, string(records[2].Payload))
}
