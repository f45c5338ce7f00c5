package transactions

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

// bulkParallelism bounds the concurrent status calls of one bulk update.
const bulkParallelism = 5

type API interface {
	ListTransactions(ctx context.Context, f models.TransactionFilters) (models.Page[models.Transaction], error)
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Transaction, error)
	TransactionStats(ctx context.Context) (models.TransactionStats, error)
	ListEntries(ctx context.Context, f models.TransactionFilters) (models.Page[models.Entry], error)
	GetEntry(ctx context.Context, id string) (models.Entry, error)
	UpdateEntryStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Entry, error)
	ListGroups(ctx context.Context, f models.TransactionFilters) (models.Page[models.Group], error)
	GetGroup(ctx context.Context, id string) (models.Group, error)
	CreateGroup(ctx context.Context, req models.CreateTransactionRequest) (models.Group, error)
}

type Service struct {
	api API
	q   *query.Client
}

func NewService(api API, q *query.Client) *Service {
	return &Service{api: api, q: q}
}

func (s *Service) ListQuery(f models.TransactionFilters) query.Query[models.Page[models.Transaction]] {
	return query.Query[models.Page[models.Transaction]]{
		Key: ListKey(f),
		Fn: func(ctx context.Context) (models.Page[models.Transaction], error) {
			return s.api.ListTransactions(ctx, f)
		},
	}
}

func (s *Service) StatsQuery() query.Query[models.TransactionStats] {
	return query.Query[models.TransactionStats]{Key: StatsKey, Fn: s.api.TransactionStats}
}

func (s *Service) List(ctx context.Context, f models.TransactionFilters) (models.Page[models.Transaction], error) {
	return query.Fetch(ctx, s.q, s.ListQuery(f))
}

func (s *Service) Get(ctx context.Context, id string) (models.Transaction, error) {
	return query.Fetch(ctx, s.q, query.Query[models.Transaction]{
		Key: DetailKey(id),
		Fn: func(ctx context.Context) (models.Transaction, error) {
			return s.api.GetTransaction(ctx, id)
		},
	})
}

func (s *Service) Stats(ctx context.Context) (models.TransactionStats, error) {
	return query.Fetch(ctx, s.q, s.StatsQuery())
}

func (s *Service) Entries(ctx context.Context, f models.TransactionFilters) (models.Page[models.Entry], error) {
	return query.Fetch(ctx, s.q, query.Query[models.Page[models.Entry]]{
		Key: EntriesKey(f),
		Fn: func(ctx context.Context) (models.Page[models.Entry], error) {
			return s.api.ListEntries(ctx, f)
		},
	})
}

func (s *Service) Entry(ctx context.Context, id string) (models.Entry, error) {
	return query.Fetch(ctx, s.q, query.Query[models.Entry]{
		Key: EntryKey(id),
		Fn: func(ctx context.Context) (models.Entry, error) {
			return s.api.GetEntry(ctx, id)
		},
	})
}

func (s *Service) Groups(ctx context.Context, f models.TransactionFilters) (models.Page[models.Group], error) {
	return query.Fetch(ctx, s.q, query.Query[models.Page[models.Group]]{
		Key: GroupsKey(f),
		Fn: func(ctx context.Context) (models.Page[models.Group], error) {
			return s.api.ListGroups(ctx, f)
		},
	})
}

func (s *Service) Group(ctx context.Context, id string) (models.Group, error) {
	return query.Fetch(ctx, s.q, query.Query[models.Group]{
		Key: GroupKey(id),
		Fn: func(ctx context.Context) (models.Group, error) {
			return s.api.GetGroup(ctx, id)
		},
	})
}

func (s *Service) Create(ctx context.Context, req models.CreateTransactionRequest) (models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return models.Transaction{}, fmt.Errorf("amount must be positive: %w", models.ErrValidation)
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.CreateTransactionRequest, models.Transaction]{
		Name:    "createTransaction",
		Affects: []query.Key{ListPrefix},
		Fn:      s.api.CreateTransaction,
		OnSuccess: func(tx *query.Tx, _ models.CreateTransactionRequest, res models.Transaction) {
			tx.Set(DetailKey(res.ID), res)
			tx.Invalidate(ListPrefix)
		},
	}, req)
}

// CreateGroup creates a DR/CR pair. Both legs show up in the entry listings as well.
func (s *Service) CreateGroup(ctx context.Context, req models.CreateTransactionRequest) (models.Group, error) {
	if !req.Amount.IsPositive() {
		return models.Group{}, fmt.Errorf("amount must be positive: %w", models.ErrValidation)
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.CreateTransactionRequest, models.Group]{
		Name:    "createGroup",
		Affects: []query.Key{groupsListPrefix},
		Fn:      s.api.CreateGroup,
		OnSuccess: func(tx *query.Tx, _ models.CreateTransactionRequest, res models.Group) {
			tx.Set(GroupKey(res.ID), res)
			tx.Invalidate(groupsListPrefix)
			tx.Invalidate(entriesListPrefix)
		},
	}, req)
}

type statusVars struct {
	ids []string
	upd models.StatusUpdate
}

// UpdateStatus changes one transaction's status, showing the new status before the backend
// confirms it.
func (s *Service) UpdateStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Transaction, error) {
	res, err := s.updateStatuses(ctx, "updateTransactionStatus", []string{id}, upd)
	if err != nil {
		return models.Transaction{}, err
	}
	return res[0], nil
}

// BulkUpdateStatus changes the status of every id. The cache is updated for all of them at once
// and rolled back for all of them if any backend call fails.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, upd models.StatusUpdate) ([]models.Transaction, error) {
	return s.updateStatuses(ctx, "bulkUpdateTransactionStatus", ids, upd)
}

func (s *Service) updateStatuses(ctx context.Context, name string, ids []string, upd models.StatusUpdate) ([]models.Transaction, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, models.ErrEmptyBatch
	}
	if !upd.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", upd.Status, models.ErrValidation)
	}

	affects := []query.Key{ListPrefix}
	for _, id := range ids {
		affects = append(affects, DetailKey(id))
	}

	return query.Mutate(ctx, s.q, query.Mutation[statusVars, []models.Transaction]{
		Name:    name,
		Affects: affects,
		Optimistic: func(tx *query.Tx, v statusVars) {
			replace(tx, v.ids, func(old models.Transaction) models.Transaction {
				old.Status = v.upd.Status
				return old
			})
		},
		Fn: func(ctx context.Context, v statusVars) ([]models.Transaction, error) {
			out := make([]models.Transaction, len(v.ids))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(bulkParallelism)
			for i, id := range v.ids {
				g.Go(func() error {
					t, err := s.api.UpdateTransactionStatus(gctx, id, v.upd)
					if err != nil {
						return err
					}
					out[i] = t
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return out, nil
		},
		OnSuccess: func(tx *query.Tx, v statusVars, res []models.Transaction) {
			byID := make(map[string]models.Transaction, len(res))
			for _, t := range res {
				byID[t.ID] = t
			}
			replace(tx, v.ids, func(old models.Transaction) models.Transaction {
				if t, ok := byID[old.ID]; ok {
					return t
				}
				return old
			})
		},
	}, statusVars{ids: ids, upd: upd})
}

// replace rewrites, copy on write, every cached detail and list page holding one of ids.
func replace(tx *query.Tx, ids []string, fn func(models.Transaction) models.Transaction) {
	for _, id := range ids {
		query.Update(tx, DetailKey(id), func(old models.Transaction) (models.Transaction, bool) {
			return fn(old), true
		})
	}
	query.Update(tx, ListPrefix, func(p models.Page[models.Transaction]) (models.Page[models.Transaction], bool) {
		var items []models.Transaction
		for i, old := range p.Items {
			if !slices.Contains(ids, old.ID) {
				continue
			}
			if items == nil {
				items = slices.Clone(p.Items)
			}
			items[i] = fn(old)
		}
		if items == nil {
			return p, false
		}
		p.Items = items
		return p, true
	})
}

func (s *Service) UpdateEntryStatus(ctx context.Context, id string, upd models.StatusUpdate) (models.Entry, error) {
	if !upd.Status.Valid() {
		return models.Entry{}, fmt.Errorf("unknown status %q: %w", upd.Status, models.ErrValidation)
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.StatusUpdate, models.Entry]{
		Name:    "updateEntryStatus",
		Affects: []query.Key{EntryKey(id), entriesListPrefix},
		Optimistic: func(tx *query.Tx, v models.StatusUpdate) {
			query.Update(tx, EntryKey(id), func(e models.Entry) (models.Entry, bool) {
				e.Status = v.Status
				return e, true
			})
		},
		Fn: func(ctx context.Context, v models.StatusUpdate) (models.Entry, error) {
			return s.api.UpdateEntryStatus(ctx, id, v)
		},
		OnSuccess: func(tx *query.Tx, _ models.StatusUpdate, res models.Entry) {
			tx.Set(EntryKey(id), res)
			tx.Invalidate(entriesListPrefix)
			tx.Invalidate(query.Key{"transactions", "detail", "groups"})
		},
	}, upd)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
