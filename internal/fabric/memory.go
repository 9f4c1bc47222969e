package fabric

import (
	"context"
	"math/rand"
	"sync"

	"fabric-registry/internal/domain"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process fabric used for development and tests. It
// gives the strongest view a peer can hope for: every write is immediately
// visible to subsequent reads.
type MemoryStore struct {
	mu      sync.RWMutex
	clock   Clock
	records map[domain.RecordID]*domain.Record
	entries map[domain.EntryID]domain.IndexEntry
	entropy *rand.Rand
}

func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = SystemClock
	}
	return &MemoryStore{
		clock:   clock,
		records: make(map[domain.RecordID]*domain.Record),
		entries: make(map[domain.EntryID]domain.IndexEntry),
		entropy: rand.New(rand.NewSource(int64(ulid.Now()))),
	}
}

func (s *MemoryStore) PutRecord(ctx context.Context, rec *domain.Record) (domain.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.CreatedAt = s.clock()
	rec.ID = rec.Address()

	// Content-addressed: putting identical content twice is a no-op.
	if _, ok := s.records[rec.ID]; !ok {
		cp := *rec
		s.records[rec.ID] = &cp
	}
	return rec.ID, nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.NotFoundf("record %s", id)
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) PutEntry(ctx context.Context, subject, target string, tag domain.LinkTag) (domain.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	id := domain.EntryID(ulid.MustNew(ulid.Timestamp(now), s.entropy).String())
	s.entries[id] = domain.IndexEntry{
		ID:        id,
		Subject:   subject,
		Target:    target,
		Tag:       tag,
		CreatedAt: now,
	}
	return id, nil
}

func (s *MemoryStore) Entries(ctx context.Context, subject string, tag domain.LinkTag) ([]domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.IndexEntry
	for _, e := range s.entries {
		if e.Subject == subject && e.Tag == tag {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, id domain.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return domain.NotFoundf("index entry %s", id)
	}
	delete(s.entries, id)
	return nil
}
