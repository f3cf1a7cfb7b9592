package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of the bot
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// SwapAPIURLKey is the base URL of the upstream swap service
	SwapAPIURLKey = "SWAP_API_URL"
	// SwapAPIKeyKey is the api key sent on every upstream request
	SwapAPIKeyKey = "SWAP_API_KEY"
	// SwapTimeoutKey is the per-request timeout towards the upstream, in seconds
	SwapTimeoutKey = "SWAP_TIMEOUT"
	// SwapMaxAttemptsKey is how many times a transient upstream failure is retried
	SwapMaxAttemptsKey = "SWAP_MAX_ATTEMPTS"
	// CurrencyCacheTTLKey is how long the currency catalog is cached, in seconds
	CurrencyCacheTTLKey = "CURRENCY_CACHE_TTL"
	// AdminIDsKey is the comma-separated list of user ids allowed on the admin surface
	AdminIDsKey = "ADMIN_IDS"
	// DefaultLanguageKey is the language assigned to new users
	DefaultLanguageKey = "DEFAULT_LANGUAGE"
	// TopTickersKey is the comma-separated shortlist of tickers offered before a search
	TopTickersKey = "TOP_TICKERS"
	// PushWebhookURLKey is where outbound push messages (broadcasts, ticket
	// answers) are POSTed; empty means they are only logged
	PushWebhookURLKey = "PUSH_WEBHOOK_URL"
	// OrderPollIntervalKey is how often a tracked order's upstream status is
	// polled, in seconds
	OrderPollIntervalKey = "ORDER_POLL_INTERVAL"
	// StatsIntervalKey defines the interval in seconds for logging runtime
	// statistics; 0 disables them
	StatsIntervalKey = "STATS_INTERVAL"

	// DbLocation is the folder inside the datadir containing db files
	DbLocation = "db"
)

var vip *viper.Viper

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tabadex-bot"
	}
	return filepath.Join(home, ".tabadex-bot")
}

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("TABADEX")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 8880)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(SwapAPIURLKey, "https://api.swapzone.io/v1/exchange")
	vip.SetDefault(SwapTimeoutKey, 20)
	vip.SetDefault(SwapMaxAttemptsKey, 3)
	vip.SetDefault(CurrencyCacheTTLKey, 3600)
	vip.SetDefault(DefaultLanguageKey, "fa")
	vip.SetDefault(TopTickersKey, "btc,eth,usdt,trx,ltc,doge")
	vip.SetDefault(OrderPollIntervalKey, 60)
	vip.SetDefault(StatsIntervalKey, 0)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetSwapTimeout returns the upstream request timeout.
func GetSwapTimeout() time.Duration {
	return time.Duration(GetInt(SwapTimeoutKey)) * time.Second
}

// GetCurrencyCacheTTL returns how long the currency catalog stays fresh.
func GetCurrencyCacheTTL() time.Duration {
	return time.Duration(GetInt(CurrencyCacheTTLKey)) * time.Second
}

// GetOrderPollInterval returns how often tracked orders are polled.
func GetOrderPollInterval() time.Duration {
	return time.Duration(GetInt(OrderPollIntervalKey)) * time.Second
}

// GetAdminIDs parses the comma-separated admin allowlist. Malformed entries
// were already rejected by validate.
func GetAdminIDs() []int64 {
	raw := GetString(AdminIDsKey)
	if len(raw) <= 0 {
		return nil
	}

	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if len(part) <= 0 {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// GetTopTickers returns the shortlist of tickers shown on currency selection.
func GetTopTickers() []string {
	raw := GetString(TopTickersKey)
	tickers := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if len(part) > 0 {
			tickers = append(tickers, part)
		}
	}
	return tickers
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if len(GetString(SwapAPIKeyKey)) <= 0 {
		return fmt.Errorf("missing swap api key")
	}

	if GetInt(SwapMaxAttemptsKey) < 1 {
		return fmt.Errorf("%s must be equal or greater than 1", SwapMaxAttemptsKey)
	}

	raw := GetString(AdminIDsKey)
	if len(raw) > 0 {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if len(part) <= 0 {
				continue
			}
			if _, err := strconv.ParseInt(part, 10, 64); err != nil {
				return fmt.Errorf("invalid admin id %q", part)
			}
		}
	}

	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
