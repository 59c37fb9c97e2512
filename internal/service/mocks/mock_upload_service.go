package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recordsapi/internal/model"
	"recordsapi/internal/service"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Init(ctx context.Context, p *model.Principal, in service.UploadInit) (*service.UploadInitResult, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadInitResult), args.Error(1)
}

func (m *MockUploadService) Complete(ctx context.Context, p *model.Principal, in service.UploadComplete, meta model.RequestMeta) (*service.UploadCompleteResult, error) {
	args := m.Called(ctx, p, in, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadCompleteResult), args.Error(1)
}
