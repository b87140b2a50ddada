package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/pkg/logger"
)

// identityOf нужен только для отображения: при ошибке остается один id
func identityOf(ctx context.Context, profiles ProfileDirectory, log *logger.Logger, userID uuid.UUID) dto.UserInfo {
	return identitiesOf(ctx, profiles, log, []uuid.UUID{userID})[userID]
}

func identitiesOf(ctx context.Context, profiles ProfileDirectory, log *logger.Logger, ids []uuid.UUID) map[uuid.UUID]dto.UserInfo {
	out := make(map[uuid.UUID]dto.UserInfo, len(ids))
	for _, id := range ids {
		out[id] = dto.UserInfo{ID: id}
	}
	if len(ids) == 0 {
		return out
	}

	found, err := profiles.GetProfiles(ctx, uniqueIDs(ids))
	if err != nil {
		log.Warn("load display identities failed", "count", len(ids), "error", err)
		return out
	}
	for id, p := range found {
		out[id] = dto.NewUserInfo(id, &p)
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
