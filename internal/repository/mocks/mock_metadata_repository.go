package mocks

import (
	"context"

	"docmcp/internal/model"
	"docmcp/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockMetadataRepository struct {
	mock.Mock
}

var _ repository.MetadataRepository = (*MockMetadataRepository)(nil)

func (m *MockMetadataRepository) ListByPathPrefix(ctx context.Context, prefix string) ([]model.FileMetadata, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileMetadata), args.Error(1)
}

func (m *MockMetadataRepository) FindByPath(ctx context.Context, path string) (*model.FileMetadata, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileMetadata), args.Error(1)
}

func (m *MockMetadataRepository) Insert(ctx context.Context, meta *model.FileMetadata) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}

func (m *MockMetadataRepository) Upsert(ctx context.Context, meta *model.FileMetadata) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}

func (m *MockMetadataRepository) DeleteByPath(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}
