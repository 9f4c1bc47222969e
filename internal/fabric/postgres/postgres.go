// Package postgres backs the fabric store with a relational database. Each
// peer keeps its own copy of the replicated index in two tables; records are
// immutable rows keyed by content address, entries are append-only pointers.
package postgres

import (
	"context"
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"

	"github.com/oklog/ulid/v2"
)

type Store struct {
	db    *sql.DB
	clock fabric.Clock

	mu      sync.Mutex
	entropy *rand.Rand
}

func NewStore(db *sql.DB, clock fabric.Clock) *Store {
	if clock == nil {
		clock = fabric.SystemClock
	}
	return &Store{
		db:      db,
		clock:   clock,
		entropy: rand.New(rand.NewSource(int64(ulid.Now()))),
	}
}

func (s *Store) newEntryID(now time.Time) domain.EntryID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.EntryID(ulid.MustNew(ulid.Timestamp(now), s.entropy).String())
}

func (s *Store) PutRecord(ctx context.Context, rec *domain.Record) (domain.RecordID, error) {
	rec.CreatedAt = s.clock()
	rec.ID = rec.Address()

	query := `INSERT INTO records (id, kind, author, payload, revision_of, nonce, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (id) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query,
		string(rec.ID), string(rec.Kind), string(rec.Author), []byte(rec.Payload),
		string(rec.RevisionOf), rec.Nonce, rec.CreatedAt)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *Store) GetRecord(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	rec := &domain.Record{}
	var kind, author, revisionOf string
	var payload []byte

	query := `SELECT id, kind, author, payload, revision_of, nonce, created_at FROM records WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, string(id)).
		Scan(&rec.ID, &kind, &author, &payload, &revisionOf, &rec.Nonce, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundf("record %s", id)
	}
	if err != nil {
		return nil, err
	}
	rec.Kind = domain.EntityKind(kind)
	rec.Author = domain.PrincipalID(author)
	rec.Payload = payload
	rec.RevisionOf = domain.RecordID(revisionOf)
	return rec, nil
}

func (s *Store) PutEntry(ctx context.Context, subject, target string, tag domain.LinkTag) (domain.EntryID, error) {
	now := s.clock()
	id := s.newEntryID(now)

	query := `INSERT INTO index_entries (id, subject, target, tag, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query, string(id), subject, target, string(tag), now)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Entries(ctx context.Context, subject string, tag domain.LinkTag) ([]domain.IndexEntry, error) {
	query := `SELECT id, subject, target, tag, created_at FROM index_entries WHERE subject = $1 AND tag = $2`
	rows, err := s.db.QueryContext(ctx, query, subject, string(tag))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		var e domain.IndexEntry
		var entryTag string
		if err := rows.Scan(&e.ID, &e.Subject, &e.Target, &entryTag, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Tag = domain.LinkTag(entryTag)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteEntry(ctx context.Context, id domain.EntryID) error {
	query := `DELETE FROM index_entries WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("index entry %s", id)
	}
	return nil
}
