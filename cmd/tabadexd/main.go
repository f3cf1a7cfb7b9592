package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tabadex/tabadex-bot/internal/config"
	"github.com/tabadex/tabadex-bot/internal/core/application"
	"github.com/tabadex/tabadex-bot/internal/infrastructure/push"
	dbbadger "github.com/tabadex/tabadex-bot/internal/infrastructure/storage/db/badger"
	httpinterface "github.com/tabadex/tabadex-bot/internal/interfaces/http"
	"github.com/tabadex/tabadex-bot/internal/locales"
	"github.com/tabadex/tabadex-bot/pkg/stats"
	"github.com/tabadex/tabadex-bot/pkg/swapzone"
	"github.com/tabadex/tabadex-bot/pkg/tracker"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	daemonCtx, stopDaemon := context.WithCancel(context.Background())
	defer stopDaemon()
	if interval := config.GetInt(config.StatsIntervalKey); interval > 0 {
		stats.EnableRuntimeStatistics(
			daemonCtx, time.Duration(interval)*time.Second,
		)
	}

	repoManager, err := dbbadger.NewRepoManager(
		config.GetDatadir(),
		config.GetString(config.DefaultLanguageKey),
		log.StandardLogger(),
	)
	if err != nil {
		log.WithError(err).Fatal("error opening db")
	}
	defer repoManager.Close()

	swapClient := swapzone.NewClient(
		config.GetString(config.SwapAPIURLKey),
		config.GetString(config.SwapAPIKeyKey),
		swapzone.Opts{
			Timeout:     config.GetSwapTimeout(),
			MaxAttempts: config.GetInt(config.SwapMaxAttemptsKey),
			CacheTTL:    config.GetCurrencyCacheTTL(),
		},
	)
	sender := push.NewWebhookSender(config.GetString(config.PushWebhookURLKey))

	trackerSvc := tracker.NewService(tracker.Opts{
		StatusProvider:    swapClient,
		Interval:          config.GetOrderPollInterval(),
		RequestsPerSecond: 1,
	})
	orderTracker := application.NewOrderTrackerService(
		trackerSvc,
		repoManager.OrderRepository(),
		repoManager.UserRepository(),
		sender,
		locales.Render,
	)
	if err := orderTracker.Start(context.Background()); err != nil {
		log.WithError(err).Fatal("error starting order tracker")
	}
	defer orderTracker.Stop()

	exchangeSvc := application.NewExchangeService(
		swapClient,
		repoManager.OrderRepository(),
		repoManager.SettingRepository(),
		orderTracker,
		config.GetTopTickers(),
	)
	accountSvc := application.NewAccountService(
		repoManager.UserRepository(),
		repoManager.OrderRepository(),
		repoManager.SavedAddressRepository(),
	)
	supportSvc := application.NewSupportService(repoManager.TicketRepository())
	adminSvc := application.NewAdminService(
		config.GetAdminIDs(),
		repoManager.UserRepository(),
		repoManager.OrderRepository(),
		repoManager.TicketRepository(),
		repoManager.SettingRepository(),
		sender,
	)

	handler := httpinterface.NewHandler(
		exchangeSvc, accountSvc, supportSvc, adminSvc,
	)
	address := fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey))
	server := &http.Server{
		Addr:    address,
		Handler: handler.Router(),
	}

	go func() {
		log.Info("gateway is listening on " + address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("error serving gateway")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("error shutting down gateway")
	}
	log.Debug("exiting")
}
