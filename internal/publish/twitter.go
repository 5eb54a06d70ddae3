package publish

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nachov/ipcmeli/pkg/config"
	"github.com/nachov/ipcmeli/pkg/logger"
)

const defaultTwitterBaseURL = "https://api.twitter.com"

// Twitter posts the daily summary through the v2 tweet endpoint with
// OAuth1 user-context authentication.
type Twitter struct {
	client  *resty.Client
	signer  *oauth1Signer
	baseURL string
	logger  *logger.Logger
}

// NewTwitter creates the posting sink from config.
func NewTwitter(cfg config.TwitterConfig, log *logger.Logger) *Twitter {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Twitter{
		client:  client,
		signer:  newOAuth1Signer(cfg.ConsumerKey, cfg.ConsumerSecret, cfg.OAuthToken, cfg.OAuthTokenSecret),
		baseURL: defaultTwitterBaseURL,
		logger:  log.WithField("module", "publish"),
	}
}

// WithBaseURL points the sink at a different endpoint. Used by tests.
func (t *Twitter) WithBaseURL(baseURL string) *Twitter {
	t.baseURL = baseURL
	return t
}

// Post publishes text. Anything but a 201 from the endpoint is an error.
func (t *Twitter) Post(ctx context.Context, text string) error {
	postURL := t.baseURL + "/2/tweets"

	auth, err := t.signer.authorizationHeader(http.MethodPost, postURL)
	if err != nil {
		return fmt.Errorf("sign tweet request: %w", err)
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", auth).
		SetBody(map[string]string{"text": text}).
		Post(postURL)
	if err != nil {
		return fmt.Errorf("post tweet: %w", err)
	}

	if resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("tweet endpoint returned %d: %s", resp.StatusCode(), resp.String())
	}

	t.logger.WithField("chars", len(text)).Info("Daily summary posted")
	return nil
}
