package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fabric-registry/internal/domain"
)

// MockStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) PutRecord(ctx context.Context, rec *domain.Record) (domain.RecordID, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(domain.RecordID), args.Error(1)
}

func (m *MockStore) GetRecord(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockStore) PutEntry(ctx context.Context, subject, target string, tag domain.LinkTag) (domain.EntryID, error) {
	args := m.Called(ctx, subject, target, tag)
	return args.Get(0).(domain.EntryID), args.Error(1)
}

func (m *MockStore) Entries(ctx context.Context, subject string, tag domain.LinkTag) ([]domain.IndexEntry, error) {
	args := m.Called(ctx, subject, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IndexEntry), args.Error(1)
}

func (m *MockStore) DeleteEntry(ctx context.Context, id domain.EntryID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
