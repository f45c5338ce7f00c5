package session

import (
	"context"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

// Storage keys, shared with the browser-era persisted state.
const (
	TokenKey    = "authToken"
	UserDataKey = "userData"
)

type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "unauthenticated-loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Session is a read-only view of the store.
type Session struct {
	User            *models.User `json:"user,omitempty"`
	Token           string       `json:"-"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsLoading       bool         `json:"isLoading"`
}

// Service is what the API client needs from the session: the current token and a way to tear the
// session down when the backend rejects it.
type Service interface {
	GetSession() Session
	SetSession(ctx context.Context, user *models.User, token string) error
	ClearSession(ctx context.Context) error
	OnInvalidate(fn func())
}

// Authenticator performs the backend half of login, registration and profile lookup.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Profile(ctx context.Context) (*models.User, error)
}
