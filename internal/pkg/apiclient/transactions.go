package apiclient

import (
	"context"
	"net/http"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

func (c *Client) ListTransactions(ctx context.Context, f models.TransactionFilters) (models.Page[models.Transaction], error) {
	return page[models.Transaction](ctx, c, "/transactions", f.Values())
}

func (c *Client) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return data[models.Transaction](ctx, c, http.MethodGet, pathf("/transactions/%s", id), nil, nil)
}

func (c *Client) CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (models.Transaction, error) {
	return data[models.Transaction](ctx, c, http.MethodPost, "/transactions", nil, req)
}

func (c *Client) UpdateTransactionStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Transaction, error) {
	return data[models.Transaction](ctx, c, http.MethodPatch, pathf("/transactions/%s/status", id), nil, upd)
}

func (c *Client) TransactionStats(ctx context.Context) (models.TransactionStats, error) {
	return data[models.TransactionStats](ctx, c, http.MethodGet, "/transactions/stats", nil, nil)
}

func (c *Client) ListEntries(ctx context.Context, f models.TransactionFilters) (models.Page[models.Entry], error) {
	return page[models.Entry](ctx, c, "/transactions/entries", f.Values())
}

func (c *Client) GetEntry(ctx context.Context, id string) (models.Entry, error) {
	return data[models.Entry](ctx, c, http.MethodGet, pathf("/transactions/entries/%s", id), nil, nil)
}

func (c *Client) UpdateEntryStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Entry, error) {
	return data[models.Entry](ctx, c, http.MethodPatch, pathf("/transactions/entries/%s/status", id), nil, upd)
}

func (c *Client) ListGroups(ctx context.Context, f models.TransactionFilters) (models.Page[models.Group], error) {
	return page[models.Group](ctx, c, "/transactions/groups", f.Values())
}

func (c *Client) GetGroup(ctx context.Context, id string) (models.Group, error) {
	return data[models.Group](ctx, c, http.MethodGet, pathf("/transactions/groups/%s", id), nil, nil)
}

// CreateGroup creates a DR entry and its offsetting CR entry in one call.
func (c *Client) CreateGroup(ctx context.Context, req models.CreateTransactionRequest) (models.Group, error) {
	return data[models.Group](ctx, c, http.MethodPost, "/transactions/groups", nil, req)
}
