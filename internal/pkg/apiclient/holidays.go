package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

// ListHolidays returns the federal holidays of year, or every stored holiday when year is 0.
func (c *Client) ListHolidays(ctx context.Context, year int) ([]models.FederalHoliday, error) {
	var q url.Values
	if year > 0 {
		q = url.Values{"year": {strconv.Itoa(year)}}
	}
	return data[[]models.FederalHoliday](ctx, c, http.MethodGet, "/holidays", q, nil)
}

func (c *Client) CreateHoliday(ctx context.Context, req models.HolidayRequest) (models.FederalHoliday, error) {
	return data[models.FederalHoliday](ctx, c, http.MethodPost, "/holidays", nil, req)
}

func (c *Client) UpdateHoliday(ctx context.Context, id string, req models.HolidayRequest) (models.FederalHoliday, error) {
	return data[models.FederalHoliday](ctx, c, http.MethodPut, pathf("/holidays/%s", id), nil, req)
}

func (c *Client) DeleteHoliday(ctx context.Context, id string) error {
	_, err := do[json.RawMessage](ctx, c, http.MethodDelete, pathf("/holidays/%s", id), nil, nil)
	return err
}

// GenerateHolidays asks the backend to compute the federal holiday calendar of year.
func (c *Client) GenerateHolidays(ctx context.Context, year int) ([]models.FederalHoliday, error) {
	return data[[]models.FederalHoliday](ctx, c, http.MethodPost, pathf("/holidays/generate/%s", year), nil, nil)
}

func (c *Client) CheckBusinessDay(ctx context.Context, date string) (models.BusinessDayCheck, error) {
	return data[models.BusinessDayCheck](ctx, c, http.MethodGet, pathf("/business-day/check/%s", date), nil, nil)
}

func (c *Client) NextBusinessDay(ctx context.Context, date string) (models.NextBusinessDay, error) {
	return data[models.NextBusinessDay](ctx, c, http.MethodGet, pathf("/business-day/next/%s", date), nil, nil)
}
