package mocks

import (
	"context"

	"docmcp/internal/model"
	"docmcp/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) ListByPathPrefix(ctx context.Context, prefix string) ([]model.FileMetadata, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileMetadata), args.Error(1)
}

func (m *MockDocumentService) GetByID(ctx context.Context, id, pathFilter string) (*model.Document, error) {
	args := m.Called(ctx, id, pathFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Create(ctx context.Context, doc *model.Document) (*model.DocumentResponse, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, doc *model.Document) (*model.DocumentResponse, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentService) SeedMetadata(ctx context.Context, files []model.FileMetadata) (int, error) {
	args := m.Called(ctx, files)
	return args.Int(0), args.Error(1)
}
