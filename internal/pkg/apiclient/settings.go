package apiclient

import (
	"context"
	"net/http"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

func (c *Client) ListSystemConfig(ctx context.Context) ([]models.SystemConfig, error) {
	return data[[]models.SystemConfig](ctx, c, http.MethodGet, "/config/system", nil, nil)
}

func (c *Client) UpdateSystemConfig(ctx context.Context, key, value string) (models.SystemConfig, error) {
	return data[models.SystemConfig](ctx, c, http.MethodPut, pathf("/config/system/%s", key), nil,
		map[string]string{"value": value})
}

func (c *Client) GetSFTPConfig(ctx context.Context) (models.SFTPConfig, error) {
	return data[models.SFTPConfig](ctx, c, http.MethodGet, "/config/sftp", nil, nil)
}

func (c *Client) UpdateSFTPConfig(ctx context.Context, cfg models.SFTPConfig) (models.SFTPConfig, error) {
	return data[models.SFTPConfig](ctx, c, http.MethodPut, "/config/sftp", nil, cfg)
}

func (c *Client) TestSFTPConnection(ctx context.Context) (models.SFTPTestResult, error) {
	return data[models.SFTPTestResult](ctx, c, http.MethodPost, "/config/sftp/test", nil, nil)
}

func (c *Client) GetACHConfig(ctx context.Context) (models.ACHConfig, error) {
	return data[models.ACHConfig](ctx, c, http.MethodGet, "/config/ach", nil, nil)
}

func (c *Client) UpdateACHConfig(ctx context.Context, cfg models.ACHConfig) (models.ACHConfig, error) {
	return data[models.ACHConfig](ctx, c, http.MethodPut, "/config/ach", nil, cfg)
}
