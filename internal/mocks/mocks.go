package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tableside/internal/api"
	"tableside/internal/domain"
)

type AuthAPI struct {
	mock.Mock
}

func (m *AuthAPI) Login(ctx context.Context, creds api.Credentials) (*api.AuthResult, error) {
	args := m.Called(ctx, creds)
	var result *api.AuthResult
	if v := args.Get(0); v != nil {
		result = v.(*api.AuthResult)
	}
	return result, args.Error(1)
}

func (m *AuthAPI) Register(ctx context.Context, reg api.Registration) (*api.AuthResult, error) {
	args := m.Called(ctx, reg)
	var result *api.AuthResult
	if v := args.Get(0); v != nil {
		result = v.(*api.AuthResult)
	}
	return result, args.Error(1)
}

func (m *AuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *AuthAPI) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type OrdersAPI struct {
	mock.Mock
}

func (m *OrdersAPI) CreateGuestOrder(ctx context.Context, restaurantID int, req api.GuestOrderRequest) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, req)
	var order *domain.Order
	if v := args.Get(0); v != nil {
		order = v.(*domain.Order)
	}
	return order, args.Error(1)
}
