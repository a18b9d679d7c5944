package http_test

import (
	"context"

	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/domain/repository"

	"github.com/stretchr/testify/mock"
)

type MockApplicationUsecase struct {
	mock.Mock
}

func (m *MockApplicationUsecase) ListByApplicant(ctx context.Context, email string) ([]*model.Application, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Application), args.Error(1)
}

func (m *MockApplicationUsecase) ListByJob(ctx context.Context, jobID string) ([]*model.Application, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Application), args.Error(1)
}

func (m *MockApplicationUsecase) Submit(ctx context.Context, app *model.Application) (string, error) {
	args := m.Called(ctx, app)
	return args.String(0), args.Error(1)
}

func (m *MockApplicationUsecase) UpdateStatus(ctx context.Context, id, status string) (*repository.UpdateResult, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UpdateResult), args.Error(1)
}

func (m *MockApplicationUsecase) Withdraw(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
