package dbbadger

import (
	"context"
	"errors"

	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type savedAddressRepositoryImpl struct {
	store *badgerhold.Store
}

func newSavedAddressRepository(
	store *badgerhold.Store,
) domain.SavedAddressRepository {
	return &savedAddressRepositoryImpl{store: store}
}

func (r *savedAddressRepositoryImpl) AddAddress(
	ctx context.Context, address *domain.SavedAddress,
) error {
	return r.store.Insert(address.ID, address)
}

func (r *savedAddressRepositoryImpl) GetAddressesForUser(
	ctx context.Context, userID int64,
) ([]domain.SavedAddress, error) {
	query := badgerhold.Where("UserID").Eq(userID).SortBy("Name")

	var addresses []domain.SavedAddress
	if err := r.store.Find(&addresses, query); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *savedAddressRepositoryImpl) DeleteAddress(
	ctx context.Context, addressID string, userID int64,
) error {
	var address domain.SavedAddress
	if err := r.store.Get(addressID, &address); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrAddressNotFound
		}
		return err
	}
	if address.UserID != userID {
		return domain.ErrAddressNotFound
	}
	return r.store.Delete(addressID, &domain.SavedAddress{})
}
