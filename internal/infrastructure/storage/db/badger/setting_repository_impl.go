package dbbadger

import (
	"context"
	"errors"

	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type settingRepositoryImpl struct {
	store *badgerhold.Store
}

func newSettingRepository(store *badgerhold.Store) domain.SettingRepository {
	return &settingRepositoryImpl{store: store}
}

func (r *settingRepositoryImpl) GetSetting(
	ctx context.Context, key, defaultValue string,
) (string, error) {
	var setting domain.AppSetting
	if err := r.store.Get(key, &setting); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return defaultValue, nil
		}
		return "", err
	}
	return setting.Value, nil
}

func (r *settingRepositoryImpl) SetSetting(
	ctx context.Context, key, value string,
) error {
	return r.store.Upsert(key, &domain.AppSetting{Key: key, Value: value})
}
