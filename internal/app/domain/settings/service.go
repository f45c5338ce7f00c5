// Package settings serves the configuration screens: system settings, SFTP delivery and the
// NACHA file header identifiers.
package settings

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

var (
	SystemKey = query.Key{"config", "all"}
	SFTPKey   = query.Key{"config", "detail", "sftp"}
	ACHKey    = query.Key{"config", "detail", "ach"}
)

type API interface {
	ListSystemConfig(ctx context.Context) ([]models.SystemConfig, error)
	UpdateSystemConfig(ctx context.Context, key, value string) (models.SystemConfig, error)
	GetSFTPConfig(ctx context.Context) (models.SFTPConfig, error)
	UpdateSFTPConfig(ctx context.Context, cfg models.SFTPConfig) (models.SFTPConfig, error)
	TestSFTPConnection(ctx context.Context) (models.SFTPTestResult, error)
	GetACHConfig(ctx context.Context) (models.ACHConfig, error)
	UpdateACHConfig(ctx context.Context, cfg models.ACHConfig) (models.ACHConfig, error)
}

type Service struct {
	api API
	q   *query.Client
}

func NewService(api API, q *query.Client) *Service {
	return &Service{api: api, q: q}
}

func (s *Service) System(ctx context.Context) ([]models.SystemConfig, error) {
	return query.Fetch(ctx, s.q, query.Query[[]models.SystemConfig]{Key: SystemKey, Fn: s.api.ListSystemConfig})
}

func (s *Service) SFTP(ctx context.Context) (models.SFTPConfig, error) {
	return query.Fetch(ctx, s.q, query.Query[models.SFTPConfig]{Key: SFTPKey, Fn: s.api.GetSFTPConfig})
}

func (s *Service) ACH(ctx context.Context) (models.ACHConfig, error) {
	return query.Fetch(ctx, s.q, query.Query[models.ACHConfig]{Key: ACHKey, Fn: s.api.GetACHConfig})
}

// UpdateSystem sets one system setting. The cached list shows the new value until the backend
// answers.
func (s *Service) UpdateSystem(ctx context.Context, key, value string) (models.SystemConfig, error) {
	if strings.TrimSpace(key) == "" {
		return models.SystemConfig{}, fmt.Errorf("config key is required: %w", models.ErrValidation)
	}
	return query.Mutate(ctx, s.q, query.Mutation[string, models.SystemConfig]{
		Name:    "updateSystemConfig",
		Affects: []query.Key{SystemKey},
		Optimistic: func(tx *query.Tx, value string) {
			setEntry(tx, models.SystemConfig{Key: key, Value: value}, true)
		},
		Fn: func(ctx context.Context, value string) (models.SystemConfig, error) {
			return s.api.UpdateSystemConfig(ctx, key, value)
		},
		OnSuccess: func(tx *query.Tx, _ string, res models.SystemConfig) {
			if res.Key == "" {
				res.Key = key
			}
			setEntry(tx, res, false)
		},
	}, value)
}

func (s *Service) UpdateSFTP(ctx context.Context, cfg models.SFTPConfig) (models.SFTPConfig, error) {
	if cfg.Enabled && cfg.Host == "" {
		return models.SFTPConfig{}, fmt.Errorf("an enabled SFTP target needs a host: %w", models.ErrValidation)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return models.SFTPConfig{}, fmt.Errorf("port %d out of range: %w", cfg.Port, models.ErrValidation)
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.SFTPConfig, models.SFTPConfig]{
		Name:    "updateSftpConfig",
		Affects: []query.Key{SFTPKey},
		Optimistic: func(tx *query.Tx, cfg models.SFTPConfig) {
			cfg.Password, cfg.PrivateKey = "", ""
			tx.Set(SFTPKey, cfg)
		},
		Fn: s.api.UpdateSFTPConfig,
		OnSuccess: func(tx *query.Tx, _ models.SFTPConfig, res models.SFTPConfig) {
			tx.Set(SFTPKey, res)
		},
	}, cfg)
}

// TestSFTP checks the stored SFTP settings against the remote host. The result is never cached.
func (s *Service) TestSFTP(ctx context.Context) (models.SFTPTestResult, error) {
	return s.api.TestSFTPConnection(ctx)
}

func (s *Service) UpdateACH(ctx context.Context, cfg models.ACHConfig) (models.ACHConfig, error) {
	if err := validateACH(cfg); err != nil {
		return models.ACHConfig{}, err
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.ACHConfig, models.ACHConfig]{
		Name:    "updateAchConfig",
		Affects: []query.Key{ACHKey},
		Optimistic: func(tx *query.Tx, cfg models.ACHConfig) {
			tx.Set(ACHKey, cfg)
		},
		Fn: s.api.UpdateACHConfig,
		OnSuccess: func(tx *query.Tx, _ models.ACHConfig, res models.ACHConfig) {
			tx.Set(ACHKey, res)
		},
	}, cfg)
}

// setEntry writes cfg into the cached system list, appending it when upsert is set and the key
// is new.
func setEntry(tx *query.Tx, cfg models.SystemConfig, upsert bool) {
	query.Update(tx, SystemKey, func(list []models.SystemConfig) ([]models.SystemConfig, bool) {
		i := slices.IndexFunc(list, func(c models.SystemConfig) bool { return c.Key == cfg.Key })
		out := slices.Clone(list)
		switch {
		case i >= 0:
			if cfg.Description == "" {
				cfg.Description = out[i].Description
			}
			cfg.IsEncrypted = cfg.IsEncrypted || out[i].IsEncrypted
			out[i] = cfg
		case upsert:
			out = append(out, cfg)
		default:
			return list, false
		}
		return out, true
	})
}

// validateACH checks the routing identifiers of the NACHA file header.
func validateACH(cfg models.ACHConfig) error {
	for name, v := range map[string]string{
		"immediateOrigin":      cfg.ImmediateOrigin,
		"immediateDestination": cfg.ImmediateDestination,
	} {
		v = strings.TrimSpace(v)
		if v == "" {
			return fmt.Errorf("%s is required: %w", name, models.ErrValidation)
		}
		if len(v) > 10 {
			return fmt.Errorf("%s must be at most 10 characters: %w", name, models.ErrValidation)
		}
	}
	if cfg.OriginatingDFI != "" && len(cfg.OriginatingDFI) != 8 {
		return fmt.Errorf("originatingDfi must be 8 digits: %w", models.ErrValidation)
	}
	return nil
}
