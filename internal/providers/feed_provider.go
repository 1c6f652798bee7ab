package providers

import (
	"context"
	"io"
	"net/http"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/metrics"
)

// maxFeedSize bounds the size of one partner feed
const maxFeedSize = 512 << 20

// FeedRequest locates one partner feed
type FeedRequest struct {
	URL      string
	Username string
	Password string
}

// FeedProvider downloads partner XML feeds, with optional Basic-Auth
type FeedProvider struct {
	Client  *http.Client
	Metrics *metrics.MetricsRegistry
}

// NewFeedProvider creates a feed downloader; large feeds get a generous timeout
func NewFeedProvider(metricsReg *metrics.MetricsRegistry) *FeedProvider {
	return &FeedProvider{
		Client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		Metrics: metricsReg,
	}
}

// FetchFeed returns the raw feed body
func (p *FeedProvider) FetchFeed(ctx context.Context, feed FeedRequest) (body []byte, err error) {
	defer func() { recordCall(p.Metrics, "feed", err) }()

	if feed.URL == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeConfigMissing,
			Message: "Feed URL cannot be empty",
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	if feed.Username != "" || feed.Password != "" {
		req.SetBasicAuth(feed.Username, feed.Password)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, feed.URL); err != nil {
		return nil, err
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read feed body",
			Err:     err,
		}
	}

	return body, nil
}
