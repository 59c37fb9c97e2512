package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recordsapi/internal/model"
	"recordsapi/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) ResolveCode(ctx context.Context, p *model.Principal, payload string, meta model.RequestMeta) (*model.DocumentView, error) {
	args := m.Called(ctx, p, payload, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentView), args.Error(1)
}

func (m *MockDocumentService) RetrievalRef(ctx context.Context, p *model.Principal, docUID string, version int, meta model.RequestMeta) (*service.RetrievalRef, error) {
	args := m.Called(ctx, p, docUID, version, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RetrievalRef), args.Error(1)
}

func (m *MockDocumentService) GenerateCode(ctx context.Context, p *model.Principal, docUID string, version int, meta model.RequestMeta) (*service.CodeResult, error) {
	args := m.Called(ctx, p, docUID, version, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CodeResult), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, p *model.Principal, docUID string, meta model.RequestMeta) error {
	args := m.Called(ctx, p, docUID, meta)
	return args.Error(0)
}

func (m *MockDocumentService) ListMine(ctx context.Context, p *model.Principal) (*service.InventoryResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InventoryResult), args.Error(1)
}

func (m *MockDocumentService) RetentionReview(ctx context.Context) (*service.RetentionSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RetentionSummary), args.Error(1)
}
