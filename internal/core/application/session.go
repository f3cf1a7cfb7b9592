package application

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tabadex/tabadex-bot/pkg/swapzone"
)

// session is the working set of one user's in-progress negotiation. It is
// discarded in full on any terminal transition.
type session struct {
	state      State
	generation uint64

	fromCurrency string
	fromNetwork  string
	toCurrency   string
	toNetwork    string
	amount       string
	finalAmount  decimal.Decimal

	// catalog is the currency snapshot fetched at session start.
	catalog  []swapzone.Currency
	byTicker map[string]swapzone.Currency

	// searchOrigin remembers which selection state opened the search
	// sub-flow.
	searchOrigin State
}

func newSession(generation uint64, catalog []swapzone.Currency) *session {
	byTicker := make(map[string]swapzone.Currency, len(catalog))
	for _, cur := range catalog {
		byTicker[cur.Ticker] = cur
	}
	return &session{
		state:      StateSelectFromCurrency,
		generation: generation,
		catalog:    catalog,
		byTicker:   byTicker,
	}
}

func (s *session) pair() swapzone.Pair {
	return swapzone.Pair{
		From:        s.fromCurrency,
		FromNetwork: s.fromNetwork,
		To:          s.toCurrency,
		ToNetwork:   s.toNetwork,
	}
}

func (s *session) searchCatalog(query string) []swapzone.Currency {
	query = strings.ToLower(strings.TrimSpace(query))
	matched := make([]swapzone.Currency, 0)
	for _, cur := range s.catalog {
		if strings.Contains(strings.ToLower(cur.Ticker), query) ||
			strings.Contains(strings.ToLower(cur.Name), query) {
			matched = append(matched, cur)
		}
	}
	return matched
}

// sessionStore keeps at most one active session per user. Handlers work on
// a snapshot of the session and commit their changes back through a
// generation check, so a step whose HTTP call outlived a cancel or restart
// can never touch the replacement session.
type sessionStore struct {
	mtx        sync.RWMutex
	sessions   map[int64]*session
	generation uint64
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

// create replaces any active session for the user with a fresh one.
func (s *sessionStore) create(userID int64, catalog []swapzone.Currency) session {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.generation++
	sess := newSession(s.generation, catalog)
	s.sessions[userID] = sess
	return *sess
}

// snapshot returns a copy of the user's session, if any.
func (s *sessionStore) snapshot(userID int64) (session, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return session{}, false
	}
	return *sess, true
}

// commit applies fn to the stored session only if it is still the same
// incarnation the snapshot was taken from.
func (s *sessionStore) commit(
	userID int64, generation uint64, fn func(sess *session),
) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.generation != generation {
		return false
	}
	fn(sess)
	return true
}

// clear drops the session if it still is the given incarnation.
func (s *sessionStore) clear(userID int64, generation uint64) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.generation != generation {
		return false
	}
	delete(s.sessions, userID)
	return true
}

// drop unconditionally removes the user's session.
func (s *sessionStore) drop(userID int64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.sessions, userID)
}
