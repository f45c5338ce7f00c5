package organizations

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

var (
	ListPrefix   = query.Key{"organizations", "list"}
	DetailPrefix = query.Key{"organizations", "detail"}
)

func ListKey(f models.OrganizationFilters) query.Key { return query.Key{"organizations", "list", f} }
func DetailKey(id string) query.Key                  { return query.Key{"organizations", "detail", id} }

type API interface {
	ListOrganizations(ctx context.Context, f models.OrganizationFilters) (models.Page[models.Organization], error)
	GetOrganization(ctx context.Context, id string) (models.Organization, error)
	CreateOrganization(ctx context.Context, req models.OrganizationRequest) (models.Organization, error)
	UpdateOrganization(ctx context.Context, id string, req models.OrganizationRequest) (models.Organization, error)
}

type Service struct {
	api API
	q   *query.Client
}

func NewService(api API, q *query.Client) *Service {
	return &Service{api: api, q: q}
}

func (s *Service) List(ctx context.Context, f models.OrganizationFilters) (models.Page[models.Organization], error) {
	return query.Fetch(ctx, s.q, query.Query[models.Page[models.Organization]]{
		Key: ListKey(f),
		Fn: func(ctx context.Context) (models.Page[models.Organization], error) {
			return s.api.ListOrganizations(ctx, f)
		},
	})
}

func (s *Service) Get(ctx context.Context, id string) (models.Organization, error) {
	return query.Fetch(ctx, s.q, query.Query[models.Organization]{
		Key: DetailKey(id),
		Fn: func(ctx context.Context) (models.Organization, error) {
			return s.api.GetOrganization(ctx, id)
		},
	})
}

func (s *Service) Create(ctx context.Context, req models.OrganizationRequest) (models.Organization, error) {
	if err := validate(req); err != nil {
		return models.Organization{}, err
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.OrganizationRequest, models.Organization]{
		Name:    "createOrganization",
		Affects: []query.Key{ListPrefix},
		Fn:      s.api.CreateOrganization,
		OnSuccess: func(tx *query.Tx, _ models.OrganizationRequest, res models.Organization) {
			tx.Set(DetailKey(res.ID), res)
			tx.Invalidate(ListPrefix)
		},
	}, req)
}

// Update edits an organization. The detail view and every cached list page reflect the change
// before the backend confirms it.
func (s *Service) Update(ctx context.Context, id string, req models.OrganizationRequest) (models.Organization, error) {
	if err := validate(req); err != nil {
		return models.Organization{}, err
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.OrganizationRequest, models.Organization]{
		Name:    "updateOrganization",
		Affects: []query.Key{DetailKey(id), ListPrefix},
		Optimistic: func(tx *query.Tx, r models.OrganizationRequest) {
			s.replace(tx, id, func(o models.Organization) models.Organization { return apply(o, r) })
		},
		Fn: func(ctx context.Context, r models.OrganizationRequest) (models.Organization, error) {
			return s.api.UpdateOrganization(ctx, id, r)
		},
		OnSuccess: func(tx *query.Tx, _ models.OrganizationRequest, res models.Organization) {
			s.replace(tx, id, func(models.Organization) models.Organization { return res })
		},
	}, req)
}

func (s *Service) replace(tx *query.Tx, id string, fn func(models.Organization) models.Organization) {
	query.Update(tx, DetailKey(id), func(o models.Organization) (models.Organization, bool) {
		return fn(o), true
	})
	query.Update(tx, ListPrefix, func(p models.Page[models.Organization]) (models.Page[models.Organization], bool) {
		i := slices.IndexFunc(p.Items, func(o models.Organization) bool { return o.ID == id })
		if i < 0 {
			return p, false
		}
		p.Items = slices.Clone(p.Items)
		p.Items[i] = fn(p.Items[i])
		return p, true
	})
}

func apply(o models.Organization, r models.OrganizationRequest) models.Organization {
	o.Name = r.Name
	o.Description = r.Description
	if r.RoutingNumber != "" {
		o.RoutingNumber = r.RoutingNumber
	}
	if r.AccountNumber != "" {
		o.AccountNumber = r.AccountNumber
	}
	if r.Active != nil {
		o.Active = *r.Active
	}
	return o
}

func validate(req models.OrganizationRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("organization name is required: %w", models.ErrValidation)
	}
	if req.RoutingNumber != "" && !models.ValidRoutingNumber(req.RoutingNumber) {
		return fmt.Errorf("routing number %q is invalid: %w", req.RoutingNumber, models.ErrValidation)
	}
	return nil
}
