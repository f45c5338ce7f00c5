package transactions

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListTransactions(ctx context.Context, f models.TransactionFilters) (models.Page[models.Transaction], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(models.Page[models.Transaction]), args.Error(1)
}

func (m *MockAPI) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockAPI) CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (models.Transaction, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockAPI) UpdateTransactionStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Transaction, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockAPI) TransactionStats(ctx context.Context) (models.TransactionStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.TransactionStats), args.Error(1)
}

func (m *MockAPI) ListEntries(ctx context.Context, f models.TransactionFilters) (models.Page[models.Entry], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(models.Page[models.Entry]), args.Error(1)
}

func (m *MockAPI) GetEntry(ctx context.Context, id string) (models.Entry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Entry), args.Error(1)
}

func (m *MockAPI) UpdateEntryStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Entry, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(models.Entry), args.Error(1)
}

func (m *MockAPI) ListGroups(ctx context.Context, f models.TransactionFilters) (models.Page[models.Group], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(models.Page[models.Group]), args.Error(1)
}

func (m *MockAPI) GetGroup(ctx context.Context, id string) (models.Group, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Group), args.Error(1)
}

func (m *MockAPI) CreateGroup(ctx context.Context, req models.CreateTransactionRequest) (models.Group, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Group), args.Error(1)
}

func fastQueryClient() *query.Client {
	return query.NewClient(query.Options{Retry: query.RetryPolicy{
		ReadTries:  4,
		WriteTries: 3,
		Initial:    time.Millisecond,
		Max:        2 * time.Millisecond,
	}})
}
