package apiclient

import (
	"context"
	"net/http"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

func (c *Client) ListOrganizations(ctx context.Context, f models.OrganizationFilters) (models.Page[models.Organization], error) {
	return page[models.Organization](ctx, c, "/organizations", f.Values())
}

func (c *Client) GetOrganization(ctx context.Context, id string) (models.Organization, error) {
	return data[models.Organization](ctx, c, http.MethodGet, pathf("/organizations/%s", id), nil, nil)
}

func (c *Client) CreateOrganization(ctx context.Context, req models.OrganizationRequest) (models.Organization, error) {
	return data[models.Organization](ctx, c, http.MethodPost, "/organizations", nil, req)
}

func (c *Client) UpdateOrganization(ctx context.Context, id string, req models.OrganizationRequest) (models.Organization, error) {
	return data[models.Organization](ctx, c, http.MethodPut, pathf("/organizations/%s", id), nil, req)
}
