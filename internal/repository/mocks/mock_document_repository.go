package mocks

import (
	"context"
	"time"

	"docmcp/internal/model"
	"docmcp/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

var _ repository.DocumentRepository = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) Insert(ctx context.Context, rec *model.DocumentRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id, pathFilter string) (*model.DocumentRecord, error) {
	args := m.Called(ctx, id, pathFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, id, path string, content map[string]any, updatedAt time.Time) error {
	args := m.Called(ctx, id, path, content, updatedAt)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
