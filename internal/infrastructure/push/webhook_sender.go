// Package push delivers unsolicited messages to users through the chat
// frontend's webhook.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tabadex/tabadex-bot/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

type webhookSender struct {
	url        string
	httpClient *http.Client
}

// NewWebhookSender returns a sender POSTing every message to the given
// webhook. An empty url returns a sender that only logs, so the backend
// stays runnable without a frontend attached.
func NewWebhookSender(url string) ports.MessageSender {
	if url == "" {
		return &logSender{}
	}
	return &webhookSender{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type pushMessage struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

func (s *webhookSender) SendMessage(
	ctx context.Context, userID int64, text string,
) error {
	buf, err := json.Marshal(pushMessage{UserID: userID, Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.url, bytes.NewReader(buf),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("push webhook returned status %d", res.StatusCode)
	}
	return nil
}

type logSender struct{}

func (s *logSender) SendMessage(
	ctx context.Context, userID int64, text string,
) error {
	log.WithField("user", userID).Info("push message (no webhook configured)")
	return nil
}
