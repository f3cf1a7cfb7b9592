package application

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
	"github.com/tabadex/tabadex-bot/internal/core/ports"
	"github.com/tabadex/tabadex-bot/internal/metrics"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	defaultUsersPageSize = 10
	// broadcastWorkers bounds the number of concurrent sends of a broadcast.
	broadcastWorkers = 8
	// broadcastRatePerSecond paces outgoing broadcast messages so the chat
	// platform's flood limits are not hit.
	broadcastRatePerSecond = 25
)

// Statistics is the admin dashboard summary.
type Statistics struct {
	TotalUsers      int
	NewUsersDay     int
	NewUsersWeek    int
	OrdersTotal     int
	OrdersDay       int
	OrdersByStatus  map[domain.OrderStatus]int
	TicketsAwaiting int
}

// BroadcastResult reports how a broadcast fan-out went.
type BroadcastResult struct {
	Sent   int
	Failed int
}

// AdminService is the operator side: user management, ticket queue,
// statistics, markup tuning and broadcasts. Every call checks the caller
// against the admin allowlist.
type AdminService interface {
	IsAdmin(userID int64) bool
	GetUsers(ctx context.Context, adminID int64, page int) ([]domain.User, error)
	FindUser(ctx context.Context, adminID, userID int64) (*domain.User, error)
	SetUserBlocked(ctx context.Context, adminID, userID int64, blocked bool) error
	GetOpenTickets(ctx context.Context, adminID int64) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, adminID int64, ticketID string) (*domain.Ticket, error)
	ReplyTicket(ctx context.Context, adminID int64, ticketID, text string) error
	CloseTicket(ctx context.Context, adminID int64, ticketID string) error
	GetStatistics(ctx context.Context, adminID int64) (*Statistics, error)
	GetMarkup(ctx context.Context, adminID int64) (string, error)
	SetMarkup(ctx context.Context, adminID int64, value string) error
	Broadcast(ctx context.Context, adminID int64, text string) (*BroadcastResult, error)
}

type adminService struct {
	adminIDs          map[int64]struct{}
	userRepository    domain.UserRepository
	orderRepository   domain.OrderRepository
	ticketRepository  domain.TicketRepository
	settingRepository domain.SettingRepository
	sender            ports.MessageSender
}

func NewAdminService(
	adminIDs []int64,
	userRepository domain.UserRepository,
	orderRepository domain.OrderRepository,
	ticketRepository domain.TicketRepository,
	settingRepository domain.SettingRepository,
	sender ports.MessageSender,
) AdminService {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &adminService{
		adminIDs:          ids,
		userRepository:    userRepository,
		orderRepository:   orderRepository,
		ticketRepository:  ticketRepository,
		settingRepository: settingRepository,
		sender:            sender,
	}
}

func (s *adminService) IsAdmin(userID int64) bool {
	_, ok := s.adminIDs[userID]
	return ok
}

func (s *adminService) guard(adminID int64) error {
	if !s.IsAdmin(adminID) {
		return ErrNotAdmin
	}
	return nil
}

func (s *adminService) GetUsers(
	ctx context.Context, adminID int64, page int,
) ([]domain.User, error) {
	if err := s.guard(adminID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return s.userRepository.GetUsersPaginated(ctx, page, defaultUsersPageSize)
}

func (s *adminService) FindUser(
	ctx context.Context, adminID, userID int64,
) (*domain.User, error) {
	if err := s.guard(adminID); err != nil {
		return nil, err
	}
	return s.userRepository.GetUser(ctx, userID)
}

func (s *adminService) SetUserBlocked(
	ctx context.Context, adminID, userID int64, blocked bool,
) error {
	if err := s.guard(adminID); err != nil {
		return err
	}
	if err := s.userRepository.UpdateUser(
		ctx, userID, func(u *domain.User) (*domain.User, error) {
			u.IsBlocked = blocked
			return u, nil
		},
	); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"admin": adminID, "user": userID, "blocked": blocked,
	}).Info("user block status changed")
	return nil
}

func (s *adminService) GetOpenTickets(
	ctx context.Context, adminID int64,
) ([]domain.Ticket, error) {
	if err := s.guard(adminID); err != nil {
		return nil, err
	}
	return s.ticketRepository.GetTicketsByStatus(
		ctx, domain.TicketStatusOpen, domain.TicketStatusPendingUserReply,
	)
}

func (s *adminService) GetTicket(
	ctx context.Context, adminID int64, ticketID string,
) (*domain.Ticket, error) {
	if err := s.guard(adminID); err != nil {
		return nil, err
	}
	return s.ticketRepository.GetTicket(ctx, ticketID)
}

func (s *adminService) ReplyTicket(
	ctx context.Context, adminID int64, ticketID, text string,
) error {
	if err := s.guard(adminID); err != nil {
		return err
	}

	var ticketUser int64
	if err := s.ticketRepository.UpdateTicket(
		ctx, ticketID, func(t *domain.Ticket) (*domain.Ticket, error) {
			if err := t.Reply(adminID, text, true); err != nil {
				return nil, err
			}
			ticketUser = t.UserID
			return t, nil
		},
	); err != nil {
		return err
	}

	// Ticket answers are pushed to the user right away; a delivery failure
	// does not roll back the reply.
	if err := s.sender.SendMessage(ctx, ticketUser, text); err != nil {
		log.WithError(err).WithField("user", ticketUser).
			Warn("could not deliver ticket answer")
	}
	return nil
}

func (s *adminService) CloseTicket(
	ctx context.Context, adminID int64, ticketID string,
) error {
	if err := s.guard(adminID); err != nil {
		return err
	}
	return s.ticketRepository.UpdateTicket(
		ctx, ticketID, func(t *domain.Ticket) (*domain.Ticket, error) {
			t.Close()
			return t, nil
		},
	)
}

func (s *adminService) GetStatistics(
	ctx context.Context, adminID int64,
) (*Statistics, error) {
	if err := s.guard(adminID); err != nil {
		return nil, err
	}

	now := time.Now()
	stats := &Statistics{
		OrdersByStatus: make(map[domain.OrderStatus]int),
	}

	var err error
	if stats.TotalUsers, err = s.userRepository.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.NewUsersDay, err = s.userRepository.CountUsersSince(
		ctx, now.Add(-24*time.Hour),
	); err != nil {
		return nil, err
	}
	if stats.NewUsersWeek, err = s.userRepository.CountUsersSince(
		ctx, now.Add(-7*24*time.Hour),
	); err != nil {
		return nil, err
	}
	if stats.OrdersDay, err = s.orderRepository.CountOrdersSince(
		ctx, now.Add(-24*time.Hour),
	); err != nil {
		return nil, err
	}

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending, domain.OrderStatusWaiting,
		domain.OrderStatusConfirming, domain.OrderStatusExchanging,
		domain.OrderStatusSending, domain.OrderStatusCompleted,
		domain.OrderStatusFailed, domain.OrderStatusRefunded,
		domain.OrderStatusCanceled,
	} {
		count, err := s.orderRepository.CountOrdersByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		stats.OrdersByStatus[status] = count
		stats.OrdersTotal += count
	}

	awaiting, err := s.ticketRepository.GetTicketsByStatus(
		ctx, domain.TicketStatusOpen, domain.TicketStatusPendingUserReply,
	)
	if err != nil {
		return nil, err
	}
	stats.TicketsAwaiting = len(awaiting)

	return stats, nil
}

func (s *adminService) GetMarkup(
	ctx context.Context, adminID int64,
) (string, error) {
	if err := s.guard(adminID); err != nil {
		return "", err
	}
	return s.settingRepository.GetSetting(
		ctx, domain.MarkupPercentageKey, domain.DefaultMarkupPercentage,
	)
}

// SetMarkup persists a new markup percentage. The [0, 100) invariant is
// enforced here, at the write path, so quote-time reads can trust it.
func (s *adminService) SetMarkup(
	ctx context.Context, adminID int64, value string,
) error {
	if err := s.guard(adminID); err != nil {
		return err
	}

	markup, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return ErrInvalidMarkup
	}
	if markup.IsNegative() || markup.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return ErrInvalidMarkup
	}

	if err := s.settingRepository.SetSetting(
		ctx, domain.MarkupPercentageKey, markup.String(),
	); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"admin": adminID, "markup": markup.String(),
	}).Info("markup percentage updated")
	return nil
}

// Broadcast fans a message out to every non-blocked user. Sends run on a
// bounded worker pool and are paced by a rate limiter; one user failing
// does not stop the rest.
func (s *adminService) Broadcast(
	ctx context.Context, adminID int64, text string,
) (*BroadcastResult, error) {
	if err := s.guard(adminID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyBroadcast
	}

	userIDs, err := s.userRepository.GetActiveUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(broadcastRatePerSecond)
	var sent, failed int

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, broadcastWorkers)
	results := make(chan bool, len(userIDs))

	for _, userID := range userIDs {
		userID := userID
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			limiter.Take()
			if err := s.sender.SendMessage(gctx, userID, text); err != nil {
				log.WithError(err).WithField("user", userID).
					Warn("broadcast delivery failed")
				metrics.BroadcastsSent.WithLabelValues("failed").Inc()
				results <- false
				return nil
			}
			metrics.BroadcastsSent.WithLabelValues("sent").Inc()
			results <- true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	for ok := range results {
		if ok {
			sent++
		} else {
			failed++
		}
	}

	log.WithFields(log.Fields{
		"admin": adminID, "sent": sent, "failed": failed,
	}).Info("broadcast finished")
	return &BroadcastResult{Sent: sent, Failed: failed}, nil
}
