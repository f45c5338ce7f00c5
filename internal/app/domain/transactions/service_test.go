package transactions

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

func newTestService() (*Service, *MockAPI, *query.Client) {
	api := new(MockAPI)
	q := fastQueryClient()
	return NewService(api, q), api, q
}

func pending(id string) models.Transaction {
	return models.Transaction{ID: id, Amount: decimal.NewFromInt(100), Status: models.StatusPending}
}

func seedThree(q *query.Client) {
	for _, id := range []string{"1", "2", "3"} {
		q.SetData(DetailKey(id), pending(id))
	}
	q.SetData(ListKey(models.TransactionFilters{}), models.Page[models.Transaction]{
		Items: []models.Transaction{pending("1"), pending("2"), pending("3"), pending("4")},
	})
	q.SetData(StatsKey, models.TransactionStats{Pending: 4})
}

func statusOf(t *testing.T, q *query.Client, id string) models.TransactionStatus {
	t.Helper()
	v, ok := query.GetQueryData[models.Transaction](q, DetailKey(id))
	require.True(t, ok)
	return v.Status
}

func TestListIsCachedByFilters(t *testing.T) {
	svc, api, _ := newTestService()
	ctx := context.Background()
	f := models.TransactionFilters{Status: models.StatusPending}
	api.On("ListTransactions", mock.Anything, f).
		Return(models.Page[models.Transaction]{Items: []models.Transaction{pending("1")}}, nil).Once()
	api.On("ListTransactions", mock.Anything, models.TransactionFilters{}).
		Return(models.Page[models.Transaction]{}, nil).Once()

	for i := 0; i < 3; i++ {
		page, err := svc.List(ctx, f)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	}
	_, err := svc.List(ctx, models.TransactionFilters{})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestGetNotFoundIsNotRetried(t *testing.T) {
	svc, api, _ := newTestService()
	api.On("GetTransaction", mock.Anything, "missing").
		Return(models.Transaction{}, &apiclient.APIError{Status: http.StatusNotFound, Message: "Transaction not found"}).Once()

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Transaction not found", err.Error())
	api.AssertNumberOfCalls(t, "GetTransaction", 1)
}

func TestUpdateStatusSuccess(t *testing.T) {
	svc, api, q := newTestService()
	seedThree(q)
	upd := models.StatusUpdate{Status: models.StatusCancelled}
	confirmed := pending("2")
	confirmed.Status = models.StatusCancelled
	confirmed.Description = "cancelled by operator"
	api.On("UpdateTransactionStatus", mock.Anything, "2", upd).Return(confirmed, nil).Once()

	res, err := svc.UpdateStatus(context.Background(), "2", upd)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, res.Status)

	detail, _ := query.GetQueryData[models.Transaction](q, DetailKey("2"))
	assert.Equal(t, "cancelled by operator", detail.Description)
	page, _ := query.GetQueryData[models.Page[models.Transaction]](q, ListKey(models.TransactionFilters{}))
	assert.Equal(t, models.StatusCancelled, page.Items[1].Status)
	assert.Equal(t, models.StatusPending, page.Items[0].Status)

	st, _ := q.State(StatsKey)
	assert.True(t, st.Stale, "stats are refetched after a status change")
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, api, _ := newTestService()

	_, err := svc.UpdateStatus(context.Background(), "1", models.StatusUpdate{Status: "bogus"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.BulkUpdateStatus(context.Background(), nil, models.StatusUpdate{Status: models.StatusProcessed})
	assert.ErrorIs(t, err, models.ErrEmptyBatch)
	api.AssertNotCalled(t, "UpdateTransactionStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkUpdateStatusIsOptimistic(t *testing.T) {
	svc, api, q := newTestService()
	seedThree(q)
	upd := models.StatusUpdate{Status: models.StatusProcessed}

	var mu sync.Mutex
	seen := map[string]models.TransactionStatus{}
	for _, id := range []string{"1", "2", "3"} {
		done := pending(id)
		done.Status = models.StatusProcessed
		api.On("UpdateTransactionStatus", mock.Anything, id, upd).
			Run(func(mock.Arguments) {
				mu.Lock()
				defer mu.Unlock()
				for _, other := range []string{"1", "2", "3"} {
					v, _ := query.GetQueryData[models.Transaction](q, DetailKey(other))
					seen[other] = v.Status
				}
			}).
			Return(done, nil).Once()
	}

	res, err := svc.BulkUpdateStatus(context.Background(), []string{"1", "2", "3", "2"}, upd)
	require.NoError(t, err)
	assert.Len(t, res, 3)
	for _, id := range []string{"1", "2", "3"} {
		assert.Equal(t, models.StatusProcessed, seen[id], "optimistic value visible during the call")
		assert.Equal(t, models.StatusProcessed, statusOf(t, q, id))
	}
	page, _ := query.GetQueryData[models.Page[models.Transaction]](q, ListKey(models.TransactionFilters{}))
	assert.Equal(t, models.StatusPending, page.Items[3].Status)
	api.AssertExpectations(t)
}

func TestBulkUpdateStatusRollsBackAll(t *testing.T) {
	svc, api, q := newTestService()
	seedThree(q)
	before, _ := q.State(ListKey(models.TransactionFilters{}))
	upd := models.StatusUpdate{Status: models.StatusProcessed}

	for _, id := range []string{"1", "3"} {
		done := pending(id)
		done.Status = models.StatusProcessed
		api.On("UpdateTransactionStatus", mock.Anything, id, upd).Return(done, nil).Maybe()
	}
	api.On("UpdateTransactionStatus", mock.Anything, "2", upd).
		Return(models.Transaction{}, &apiclient.APIError{Status: http.StatusConflict, Message: "Transaction already processed"}).Once()

	_, err := svc.BulkUpdateStatus(context.Background(), []string{"1", "2", "3"}, upd)
	require.Error(t, err)
	assert.Equal(t, "Transaction already processed", err.Error())

	for _, id := range []string{"1", "2", "3"} {
		assert.Equal(t, models.StatusPending, statusOf(t, q, id))
	}
	after, _ := q.State(ListKey(models.TransactionFilters{}))
	assert.Equal(t, before.Data, after.Data)
	api.AssertCalled(t, "UpdateTransactionStatus", mock.Anything, "2", upd)
}

func TestCreateInvalidatesLists(t *testing.T) {
	svc, api, q := newTestService()
	seedThree(q)
	req := models.CreateTransactionRequest{Amount: decimal.RequireFromString("12.34"), EffectiveDate: "2024-07-05"}
	api.On("CreateTransaction", mock.Anything, req).Return(models.Transaction{ID: "9", Amount: req.Amount, Status: models.StatusPending}, nil).Once()

	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)

	_, ok := query.GetQueryData[models.Transaction](q, DetailKey("9"))
	assert.True(t, ok)
	st, _ := q.State(ListKey(models.TransactionFilters{}))
	assert.True(t, st.Stale)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	svc, api, _ := newTestService()
	_, err := svc.Create(context.Background(), models.CreateTransactionRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, models.ErrValidation)
	api.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestUpdateEntryStatusRollback(t *testing.T) {
	svc, api, q := newTestService()
	q.SetData(EntryKey("e1"), models.Entry{ID: "e1", EntryType: models.EntryDebit, Status: models.StatusPending})
	upd := models.StatusUpdate{Status: models.StatusReturned}
	api.On("UpdateEntryStatus", mock.Anything, "e1", upd).
		Return(models.Entry{}, &apiclient.APIError{Status: http.StatusBadRequest, Message: "entry is locked"}).Once()

	_, err := svc.UpdateEntryStatus(context.Background(), "e1", upd)
	require.Error(t, err)
	e, _ := query.GetQueryData[models.Entry](q, EntryKey("e1"))
	assert.Equal(t, models.StatusPending, e.Status)
}
