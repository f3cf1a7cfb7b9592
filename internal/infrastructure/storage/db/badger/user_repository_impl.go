package dbbadger

import (
	"context"
	"errors"
	"time"

	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type userRepositoryImpl struct {
	store           *badgerhold.Store
	defaultLanguage string
}

func newUserRepository(
	store *badgerhold.Store, defaultLanguage string,
) domain.UserRepository {
	return &userRepositoryImpl{store: store, defaultLanguage: defaultLanguage}
}

func (r *userRepositoryImpl) GetOrCreateUser(
	ctx context.Context, userID int64, username, firstName string,
) (*domain.User, error) {
	var user domain.User
	err := r.store.Get(userID, &user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, err
	}

	newUser := domain.NewUser(userID, username, firstName, r.defaultLanguage)
	if err := r.store.Insert(userID, newUser); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			// Lost a creation race, the stored one wins.
			if err := r.store.Get(userID, &user); err != nil {
				return nil, err
			}
			return &user, nil
		}
		return nil, err
	}
	return newUser, nil
}

func (r *userRepositoryImpl) GetUser(
	ctx context.Context, userID int64,
) (*domain.User, error) {
	var user domain.User
	if err := r.store.Get(userID, &user); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepositoryImpl) GetUsersPaginated(
	ctx context.Context, page, limit int,
) ([]domain.User, error) {
	query := (&badgerhold.Query{}).
		SortBy("CreatedAt").Reverse().
		Skip((page - 1) * limit).Limit(limit)

	var users []domain.User
	if err := r.store.Find(&users, query); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepositoryImpl) CountUsers(ctx context.Context) (int, error) {
	count, err := r.store.Count(&domain.User{}, nil)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *userRepositoryImpl) CountUsersSince(
	ctx context.Context, since time.Time,
) (int, error) {
	count, err := r.store.Count(
		&domain.User{}, badgerhold.Where("CreatedAt").Ge(since),
	)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *userRepositoryImpl) UpdateUser(
	ctx context.Context, userID int64,
	updateFn func(u *domain.User) (*domain.User, error),
) error {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	updated, err := updateFn(user)
	if err != nil {
		return err
	}
	return r.store.Update(userID, updated)
}

func (r *userRepositoryImpl) GetActiveUserIDs(
	ctx context.Context,
) ([]int64, error) {
	var users []domain.User
	if err := r.store.Find(
		&users, badgerhold.Where("IsBlocked").Eq(false),
	); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.UserID)
	}
	return ids, nil
}
