package nacha

import (
	"context"
	"fmt"
	"time"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

var (
	ListPrefix   = query.Key{"nacha", "list"}
	DetailPrefix = query.Key{"nacha", "detail"}
	StatsKey     = query.Key{"nacha", "stats"}
)

func ListKey(f models.NachaFilters) query.Key { return query.Key{"nacha", "list", f} }
func DetailKey(id string) query.Key           { return query.Key{"nacha", "detail", id} }
func ValidationKey(id string) query.Key       { return query.Key{"nacha", "validation", id} }

type API interface {
	ListNachaFiles(ctx context.Context, f models.NachaFilters) (models.Page[models.NachaFile], error)
	GetNachaFile(ctx context.Context, id string) (models.NachaFile, error)
	GenerateNachaFile(ctx context.Context, req models.GenerateNachaRequest) (models.NachaFile, error)
	DownloadNachaFile(ctx context.Context, id string) (*apiclient.Download, error)
	ValidateNachaFile(ctx context.Context, id string) (models.NachaValidation, error)
	TransmitNachaFile(ctx context.Context, id string) (models.NachaFile, error)
	NachaStats(ctx context.Context) (models.NachaStats, error)
}

type Service struct {
	api API
	q   *query.Client
}

func NewService(api API, q *query.Client) *Service {
	return &Service{api: api, q: q}
}

func (s *Service) List(ctx context.Context, f models.NachaFilters) (models.Page[models.NachaFile], error) {
	return query.Fetch(ctx, s.q, query.Query[models.Page[models.NachaFile]]{
		Key: ListKey(f),
		Fn: func(ctx context.Context) (models.Page[models.NachaFile], error) {
			return s.api.ListNachaFiles(ctx, f)
		},
	})
}

func (s *Service) Get(ctx context.Context, id string) (models.NachaFile, error) {
	return query.Fetch(ctx, s.q, query.Query[models.NachaFile]{
		Key: DetailKey(id),
		Fn: func(ctx context.Context) (models.NachaFile, error) {
			return s.api.GetNachaFile(ctx, id)
		},
	})
}

func (s *Service) Validate(ctx context.Context, id string) (models.NachaValidation, error) {
	return query.Fetch(ctx, s.q, query.Query[models.NachaValidation]{
		Key: ValidationKey(id),
		Fn: func(ctx context.Context) (models.NachaValidation, error) {
			return s.api.ValidateNachaFile(ctx, id)
		},
	})
}

func (s *Service) StatsQuery() query.Query[models.NachaStats] {
	return query.Query[models.NachaStats]{Key: StatsKey, Fn: s.api.NachaStats}
}

func (s *Service) Stats(ctx context.Context) (models.NachaStats, error) {
	return query.Fetch(ctx, s.q, s.StatsQuery())
}

// Download is never cached; file bodies can be large and are fetched once per click.
func (s *Service) Download(ctx context.Context, id string) (*apiclient.Download, error) {
	return s.api.DownloadNachaFile(ctx, id)
}

// Generate builds a NACHA file from the pending transactions of an effective date. The
// transactions it picks up change status on the backend, so the transaction family is refetched.
func (s *Service) Generate(ctx context.Context, req models.GenerateNachaRequest) (models.NachaFile, error) {
	if _, err := time.Parse(time.DateOnly, req.EffectiveDate); err != nil {
		return models.NachaFile{}, fmt.Errorf("effective date %q is not YYYY-MM-DD: %w", req.EffectiveDate, models.ErrValidation)
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.GenerateNachaRequest, models.NachaFile]{
		Name:    "generateNachaFile",
		Affects: []query.Key{ListPrefix},
		Fn:      s.api.GenerateNachaFile,
		OnSuccess: func(tx *query.Tx, _ models.GenerateNachaRequest, res models.NachaFile) {
			tx.Set(DetailKey(res.ID), res)
			tx.Invalidate(ListPrefix)
		},
	}, req)
}

// Transmit sends a file to the ACH operator. The file shows as transmitted until the backend
// answers.
func (s *Service) Transmit(ctx context.Context, id string) (models.NachaFile, error) {
	setStatus := func(tx *query.Tx, fn func(models.NachaFile) models.NachaFile) {
		query.Update(tx, DetailKey(id), func(f models.NachaFile) (models.NachaFile, bool) {
			return fn(f), true
		})
		query.Update(tx, ListPrefix, func(p models.Page[models.NachaFile]) (models.Page[models.NachaFile], bool) {
			for i, f := range p.Items {
				if f.ID != id {
					continue
				}
				items := make([]models.NachaFile, len(p.Items))
				copy(items, p.Items)
				items[i] = fn(f)
				p.Items = items
				return p, true
			}
			return p, false
		})
	}

	return query.Mutate(ctx, s.q, query.Mutation[string, models.NachaFile]{
		Name:    "transmitNachaFile",
		Affects: []query.Key{DetailKey(id), ListPrefix},
		Optimistic: func(tx *query.Tx, _ string) {
			setStatus(tx, func(f models.NachaFile) models.NachaFile {
				f.Status = models.NachaTransmitted
				return f
			})
		},
		Fn: s.api.TransmitNachaFile,
		OnSuccess: func(tx *query.Tx, _ string, res models.NachaFile) {
			setStatus(tx, func(models.NachaFile) models.NachaFile { return res })
			tx.Set(DetailKey(id), res)
		},
	}, id)
}
