package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/logger"
)

var _ Service = (*Store)(nil)

// ErrNoAuthenticator is returned by Login/Register before Attach has been called.
var ErrNoAuthenticator = errors.New("session: no authenticator attached")

type Store struct {
	mu        sync.RWMutex
	state     State
	user      *models.User
	token     string
	storage   Storage
	auth      Authenticator
	listeners []func()
	logger    *zap.Logger
	now       func() time.Time
}

func NewStore(storage Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		state:   StateLoading,
		storage: storage,
		logger:  log,
		now:     time.Now,
	}
}

// Attach sets the backend used by Login, Register and Restore. The API client depends on the
// store for its token, so the two are wired after construction.
func (s *Store) Attach(auth Authenticator) {
	s.mu.Lock()
	s.auth = auth
	s.mu.Unlock()
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) GetSession() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var u *models.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	return Session{
		User:            u,
		Token:           s.token,
		IsAuthenticated: s.user != nil && s.token != "",
		IsLoading:       s.state == StateLoading,
	}
}

func (s *Store) User() *models.User {
	return s.GetSession().User
}

// HasRole is a membership check against the current user's role; false when unauthenticated.
func (s *Store) HasRole(roles ...string) bool {
	sess := s.GetSession()
	if !sess.IsAuthenticated {
		return false
	}
	return sess.User.HasRole(roles...)
}

// SetSession installs user and token and persists both. The in-memory session is kept even when
// persistence fails; the error is returned so callers can log it.
func (s *Store) SetSession(ctx context.Context, user *models.User, token string) error {
	if user == nil || token == "" {
		return fmt.Errorf("set session: user and token are required: %w", models.ErrValidation)
	}
	cp := *user

	s.mu.Lock()
	s.user = &cp
	s.token = token
	s.state = StateAuthenticated
	s.mu.Unlock()

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("set session: encode user: %w", err)
	}
	if err := s.storage.SetItem(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("set session: persist token: %w", err)
	}
	if err := s.storage.SetItem(ctx, UserDataKey, string(data)); err != nil {
		return fmt.Errorf("set session: persist user: %w", err)
	}
	return nil
}

// ClearSession drops user and token from memory and storage and notifies the invalidation
// listeners.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.clear(ctx, true)
}

func (s *Store) OnInvalidate(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) clear(ctx context.Context, notify bool) error {
	s.mu.Lock()
	hadToken := s.token
	s.user = nil
	s.token = ""
	s.state = StateUnauthenticated
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	err := errors.Join(
		s.storage.RemoveItem(ctx, TokenKey),
		s.storage.RemoveItem(ctx, UserDataKey),
	)
	if err != nil {
		s.logger.Warn("Failed to clear persisted session", zap.Error(err))
	}

	if notify {
		s.logger.Info("Session cleared", logger.Token(hadToken))
		fire(listeners)
	}
	return err
}

func fire(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}

// Restore rebuilds the session from storage. A token without a cached profile is re-validated by
// fetching the profile from the backend; no identity is assumed without it.
func (s *Store) Restore(ctx context.Context) error {
	token, ok, err := s.storage.GetItem(ctx, TokenKey)
	if err != nil {
		s.setState(StateUnauthenticated)
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok || token == "" {
		s.setState(StateUnauthenticated)
		return nil
	}

	if tokenExpired(token, s.now()) {
		s.logger.Info("Persisted token expired", logger.Token(token))
		_ = s.clear(ctx, false)
		return nil
	}

	if user := s.cachedUser(ctx); user != nil {
		s.mu.Lock()
		s.user = user
		s.token = token
		s.state = StateAuthenticated
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.token = token
	auth := s.auth
	s.mu.Unlock()

	if auth == nil {
		_ = s.clear(ctx, false)
		return nil
	}

	user, err := auth.Profile(ctx)
	if err == nil && user == nil {
		err = fmt.Errorf("restore session: empty profile: %w", models.ErrUnauthenticated)
	}
	if err != nil {
		if rejected(err) {
			s.logger.Warn("Profile re-validation rejected, dropping persisted token",
				logger.Token(token), zap.Error(err))
			_ = s.clear(ctx, false)
			return nil
		}
		// the persisted token stays for the next attempt
		s.mu.Lock()
		s.token = ""
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return fmt.Errorf("restore session: fetch profile: %w", err)
	}
	if err := s.SetSession(ctx, user, token); err != nil {
		s.logger.Warn("Failed to persist restored session", zap.Error(err))
	}
	return nil
}

// rejected reports whether the backend refused the token itself, as opposed to being unreachable
// or failing.
func rejected(err error) bool {
	if errors.Is(err, models.ErrUnauthenticated) {
		return true
	}
	var sc interface{ HTTPStatus() int }
	if errors.As(err, &sc) {
		st := sc.HTTPStatus()
		return st == http.StatusUnauthorized || st == http.StatusForbidden
	}
	return false
}

func (s *Store) cachedUser(ctx context.Context) *models.User {
	raw, ok, err := s.storage.GetItem(ctx, UserDataKey)
	if err != nil || !ok || raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		s.logger.Warn("Discarding unreadable cached user", zap.Error(err))
		return nil
	}
	return &u
}

// Login authenticates against the backend. On failure the backend error is returned unchanged so
// its envelope message reaches the user verbatim.
func (s *Store) Login(ctx context.Context, email, password string) error {
	auth, err := s.authenticator()
	if err != nil {
		return err
	}
	res, err := auth.Login(ctx, email, password)
	return s.complete(ctx, "login", res, err)
}

func (s *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	auth, err := s.authenticator()
	if err != nil {
		return err
	}
	res, err := auth.Register(ctx, req)
	return s.complete(ctx, "register", res, err)
}

// Logout clears the session synchronously. The backend is not called.
func (s *Store) Logout(ctx context.Context) error {
	return s.ClearSession(ctx)
}

func (s *Store) complete(ctx context.Context, op string, res *models.AuthResult, err error) error {
	if err == nil && (res == nil || res.Token == "" || res.User.ID == "") {
		err = fmt.Errorf("%s: incomplete authentication response: %w", op, models.ErrUnauthenticated)
	}
	if err != nil {
		s.mu.Lock()
		if s.state == StateLoading {
			s.state = StateUnauthenticated
		}
		s.mu.Unlock()
		return err
	}

	// a new identity over a live session must not see the previous one's cached data
	s.mu.RLock()
	var prev string
	if s.user != nil && s.token != "" {
		prev = s.user.ID
	}
	listeners := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	if prev != "" {
		s.logger.Info("Replacing existing session",
			zap.String("op", op),
			zap.String("previous_user_id", prev),
			zap.String("user_id", res.User.ID))
		fire(listeners)
	}

	if err := s.SetSession(ctx, &res.User, res.Token); err != nil {
		s.logger.Warn("Session established but not persisted", zap.String("op", op), zap.Error(err))
	}
	s.logger.Info("Session established",
		zap.String("op", op),
		zap.String("user_id", res.User.ID),
		logger.Token(res.Token))
	return nil
}

func (s *Store) authenticator() (Authenticator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return nil, ErrNoAuthenticator
	}
	return s.auth, nil
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
