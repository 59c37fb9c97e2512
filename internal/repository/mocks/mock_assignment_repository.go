package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) ManagerHasStaff(ctx context.Context, managerID, staffID string) (bool, error) {
	args := m.Called(ctx, managerID, staffID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepository) ManagerHasClient(ctx context.Context, managerID, clientID string) (bool, error) {
	args := m.Called(ctx, managerID, clientID)
	return args.Bool(0), args.Error(1)
}
