package mocks

import (
	"context"

	"recordsapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, ev *model.AuditEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByDocUIDs(ctx context.Context, docUIDs []string, limit int) ([]model.AuditEvent, error) {
	args := m.Called(ctx, docUIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEvent), args.Error(1)
}

type MockDisposalRepository struct {
	mock.Mock
}

func (m *MockDisposalRepository) Insert(ctx context.Context, cert *model.DisposalCertificate) error {
	args := m.Called(ctx, cert)
	return args.Error(0)
}
