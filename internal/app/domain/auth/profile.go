package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
)

// profileFn loads the profile and keeps the session's copy of the user in step with it.
func profileFn(ws *workspace.Workspace, log *zap.Logger) func(context.Context) (models.User, error) {
	return func(ctx context.Context) (models.User, error) {
		u, err := ws.API.Profile(ctx)
		if err != nil {
			return models.User{}, err
		}
		if cur := ws.Session.GetSession(); cur.IsAuthenticated {
			if err := ws.Session.SetSession(ctx, u, cur.Token); err != nil {
				log.Warn("Refreshed profile not persisted", zap.Error(err))
			}
		}
		return *u, nil
	}
}
