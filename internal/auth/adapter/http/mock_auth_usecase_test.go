package http_test

import (
	"context"

	"job-portal/internal/auth/domain/model"
	"job-portal/internal/auth/domain/repository"
	"job-portal/internal/auth/policy"
	"job-portal/internal/auth/usecase"

	"github.com/stretchr/testify/mock"
)

// mockAuthUsecase is a shared mock type for the AuthUsecaseInterface
type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) IssueSession(ctx context.Context, req usecase.SessionRequest) (*model.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockAuthUsecase) EndSession(ctx context.Context, email string) {
	m.Called(ctx, email)
}

func (m *mockAuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Claims), args.Error(1)
}

func (m *mockAuthUsecase) Authorize(ctx context.Context, rule string, in policy.Input) error {
	args := m.Called(ctx, rule, in)
	return args.Error(0)
}

var _ usecase.AuthUsecaseInterface = (*mockAuthUsecase)(nil)
