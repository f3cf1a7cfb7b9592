package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
)

const defaultOrdersPageSize = 5

// AccountService covers everything a user manages about their own account:
// order history, saved payout addresses and language.
type AccountService interface {
	GetOrCreateUser(
		ctx context.Context, userID int64, username, firstName string,
	) (*domain.User, error)
	ChangeLanguage(ctx context.Context, userID int64, lang string) error
	GetOrders(ctx context.Context, userID int64, page int) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID int64, orderID string) (*domain.Order, error)
	GetSavedAddresses(ctx context.Context, userID int64) ([]domain.SavedAddress, error)
	AddSavedAddress(
		ctx context.Context, userID int64, name, address, currencyTicker string,
	) (*domain.SavedAddress, error)
	DeleteSavedAddress(ctx context.Context, userID int64, addressID string) error
}

type accountService struct {
	userRepository    domain.UserRepository
	orderRepository   domain.OrderRepository
	addressRepository domain.SavedAddressRepository
}

func NewAccountService(
	userRepository domain.UserRepository,
	orderRepository domain.OrderRepository,
	addressRepository domain.SavedAddressRepository,
) AccountService {
	return &accountService{
		userRepository:    userRepository,
		orderRepository:   orderRepository,
		addressRepository: addressRepository,
	}
}

func (s *accountService) GetOrCreateUser(
	ctx context.Context, userID int64, username, firstName string,
) (*domain.User, error) {
	return s.userRepository.GetOrCreateUser(ctx, userID, username, firstName)
}

func (s *accountService) ChangeLanguage(
	ctx context.Context, userID int64, lang string,
) error {
	return s.userRepository.UpdateUser(
		ctx, userID, func(u *domain.User) (*domain.User, error) {
			u.LanguageCode = lang
			return u, nil
		},
	)
}

func (s *accountService) GetOrders(
	ctx context.Context, userID int64, page int,
) ([]domain.Order, error) {
	if page < 1 {
		page = 1
	}
	return s.orderRepository.GetOrdersForUser(
		ctx, userID, page, defaultOrdersPageSize,
	)
}

func (s *accountService) GetOrder(
	ctx context.Context, userID int64, orderID string,
) (*domain.Order, error) {
	return s.orderRepository.GetOrderForUser(ctx, orderID, userID)
}

func (s *accountService) GetSavedAddresses(
	ctx context.Context, userID int64,
) ([]domain.SavedAddress, error) {
	return s.addressRepository.GetAddressesForUser(ctx, userID)
}

func (s *accountService) AddSavedAddress(
	ctx context.Context, userID int64, name, address, currencyTicker string,
) (*domain.SavedAddress, error) {
	saved := domain.NewSavedAddress(userID, name, address, currencyTicker)
	if err := s.addressRepository.AddAddress(ctx, saved); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user": userID, "name": name,
	}).Debug("saved address added")
	return saved, nil
}

func (s *accountService) DeleteSavedAddress(
	ctx context.Context, userID int64, addressID string,
) error {
	return s.addressRepository.DeleteAddress(ctx, addressID, userID)
}
