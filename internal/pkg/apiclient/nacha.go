package apiclient

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

// Download is a raw file body returned by the backend outside the JSON envelope.
type Download struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (c *Client) ListNachaFiles(ctx context.Context, f models.NachaFilters) (models.Page[models.NachaFile], error) {
	return page[models.NachaFile](ctx, c, "/nacha/files", f.Values())
}

func (c *Client) GetNachaFile(ctx context.Context, id string) (models.NachaFile, error) {
	return data[models.NachaFile](ctx, c, http.MethodGet, pathf("/nacha/files/%s", id), nil, nil)
}

func (c *Client) GenerateNachaFile(ctx context.Context, req models.GenerateNachaRequest) (models.NachaFile, error) {
	return data[models.NachaFile](ctx, c, http.MethodPost, "/nacha/generate", nil, req)
}

func (c *Client) ValidateNachaFile(ctx context.Context, id string) (models.NachaValidation, error) {
	return data[models.NachaValidation](ctx, c, http.MethodGet, pathf("/nacha/files/%s/validate", id), nil, nil)
}

func (c *Client) TransmitNachaFile(ctx context.Context, id string) (models.NachaFile, error) {
	return data[models.NachaFile](ctx, c, http.MethodPost, pathf("/nacha/files/%s/transmit", id), nil, nil)
}

func (c *Client) NachaStats(ctx context.Context) (models.NachaStats, error) {
	return data[models.NachaStats](ctx, c, http.MethodGet, "/nacha/stats", nil, nil)
}

// DownloadNachaFile fetches the fixed-width file body. The filename comes from Content-Disposition
// when the backend sends one.
func (c *Client) DownloadNachaFile(ctx context.Context, id string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathf("/nacha/files/%s/download", id), nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, payload, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, payload)
	}

	dl := &Download{
		Filename:    fmt.Sprintf("nacha-%s.ach", id),
		ContentType: resp.Header.Get("Content-Type"),
		Content:     payload,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		dl.Filename = params["filename"]
	}
	if dl.ContentType == "" {
		dl.ContentType = "application/octet-stream"
	}
	return dl, nil
}
