package publish

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nachov/ipcmeli/pkg/logger"
)

// Webhook is the best-effort failure notifier: a Discord-style JSON post.
// Its own failures are swallowed; a broken webhook must never mask the
// original run failure.
type Webhook struct {
	client *resty.Client
	url    string
	logger *logger.Logger
}

// NewWebhook creates the notifier. An empty url disables it.
func NewWebhook(url string, log *logger.Logger) *Webhook {
	client := resty.New()
	client.SetTimeout(10 * time.Second)

	return &Webhook{
		client: client,
		url:    url,
		logger: log.WithField("module", "webhook"),
	}
}

// Notify sends content, logging but ignoring any failure.
func (w *Webhook) Notify(ctx context.Context, content string) {
	if w.url == "" {
		return
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"content": content}).
		Post(w.url)
	if err != nil {
		w.logger.WithError(err).Warn("Failure notification could not be delivered")
		return
	}
	if resp.IsError() {
		w.logger.WithField("status", resp.StatusCode()).Warn("Failure notification rejected")
	}
}
