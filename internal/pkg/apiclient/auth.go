package apiclient

import (
	"context"
	"net/http"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/session"
)

var _ session.Authenticator = (*Client)(nil)

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	res, err := data[models.AuthResult](ctx, c, http.MethodPost, "/auth/login", nil,
		models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	res, err := data[models.AuthResult](ctx, c, http.MethodPost, "/auth/register", nil, req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Profile returns the user the current token belongs to.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	user, err := data[models.User](ctx, c, http.MethodGet, "/auth/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	return data[HealthStatus](ctx, c, http.MethodGet, "/health", nil, nil)
}
