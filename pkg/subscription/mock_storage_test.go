package subscription_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Get(_ context.Context, key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Set(_ context.Context, key, value string) error {
	return m.Called(key, value).Error(0)
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	return m.Called(key).Error(0)
}
