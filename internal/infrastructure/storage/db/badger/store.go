package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// RepoManager opens the badger store on disk and hands out the domain
// repositories backed by it. An empty base dir opens an in-memory store,
// used by tests.
type RepoManager struct {
	store *badgerhold.Store

	userRepository    domain.UserRepository
	orderRepository   domain.OrderRepository
	addressRepository domain.SavedAddressRepository
	ticketRepository  domain.TicketRepository
	settingRepository domain.SettingRepository
}

func NewRepoManager(
	baseDbDir, defaultLanguage string, logger badger.Logger,
) (*RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "db")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening main db: %w", err)
	}

	return &RepoManager{
		store:             store,
		userRepository:    newUserRepository(store, defaultLanguage),
		orderRepository:   newOrderRepository(store),
		addressRepository: newSavedAddressRepository(store),
		ticketRepository:  newTicketRepository(store),
		settingRepository: newSettingRepository(store),
	}, nil
}

func (m *RepoManager) UserRepository() domain.UserRepository {
	return m.userRepository
}

func (m *RepoManager) OrderRepository() domain.OrderRepository {
	return m.orderRepository
}

func (m *RepoManager) SavedAddressRepository() domain.SavedAddressRepository {
	return m.addressRepository
}

func (m *RepoManager) TicketRepository() domain.TicketRepository {
	return m.ticketRepository
}

func (m *RepoManager) SettingRepository() domain.SettingRepository {
	return m.settingRepository
}

func (m *RepoManager) Close() {
	m.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
