package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/models/dtos"
)

// notFoundMarker is cached for identifiers the API does not know
const notFoundMarker = "null"

// GrantsProvider queries the association grants API. Every network call goes
// through the shared throttle; answers, including not-found, are cached.
type GrantsProvider struct {
	BaseURL  string
	APIKey   string
	Client   *http.Client
	Throttle *common.Throttle
	Cache    common.CacheInterface
	CacheTTL time.Duration
	Metrics  *metrics.MetricsRegistry
}

func NewGrantsProvider(
	baseURL string,
	apiKey string,
	throttle *common.Throttle,
	cache common.CacheInterface,
	cacheTTL time.Duration,
	metricsReg *metrics.MetricsRegistry,
) *GrantsProvider {
	return &GrantsProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
		Throttle: throttle,
		Cache:    cache,
		CacheTTL: cacheTTL,
		Metrics:  metricsReg,
	}
}

// GetAssociation fetches GET /association/{rna}; nil, nil when unknown
func (p *GrantsProvider) GetAssociation(ctx context.Context, rna string) (*dtos.GrantsAssociation, error) {
	if rna == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "RNA cannot be empty",
		}
	}

	var envelope dtos.GrantsAssociationEnvelope
	found, err := p.cachedGET(ctx, string(constants.CachePrefixGrantsAssociation)+rna, "/association/"+url.PathEscape(rna), &envelope)
	if err != nil || !found {
		return nil, err
	}
	return envelope.Association, nil
}

// GetEstablishment fetches GET /etablissement/{siret}; nil, nil when unknown
func (p *GrantsProvider) GetEstablishment(ctx context.Context, siret string) (*dtos.GrantsEstablishment, error) {
	if siret == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "SIRET cannot be empty",
		}
	}

	var envelope dtos.GrantsEstablishmentEnvelope
	found, err := p.cachedGET(ctx, string(constants.CachePrefixGrantsEtablissement)+siret, "/etablissement/"+url.PathEscape(siret), &envelope)
	if err != nil || !found {
		return nil, err
	}
	return envelope.Establishment, nil
}

// cachedGET decodes the cached or fetched body into result. found is false for a
// remembered or fresh 404.
func (p *GrantsProvider) cachedGET(ctx context.Context, cacheKey, endpoint string, result interface{}) (bool, error) {
	if p.Cache != nil {
		if raw, ok := common.GetString(p.Cache, cacheKey); ok {
			p.recordCache(true)
			if raw == notFoundMarker {
				return false, nil
			}
			if err := json.Unmarshal([]byte(raw), result); err == nil {
				return true, nil
			}
			p.Cache.Delete(cacheKey)
		} else {
			p.recordCache(false)
		}
	}

	body, err := p.doGET(ctx, endpoint)
	if IsNotFound(err) {
		p.store(cacheKey, notFoundMarker)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return false, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode response",
			Details: string(body),
			Err:     err,
		}
	}

	p.store(cacheKey, string(body))
	return true, nil
}

func (p *GrantsProvider) store(key, value string) {
	if p.Cache != nil {
		p.Cache.Set(key, value, p.CacheTTL)
	}
}

func (p *GrantsProvider) recordCache(hit bool) {
	if p.Metrics == nil {
		return
	}
	if hit {
		p.Metrics.CacheHitsTotal.WithLabelValues("grants").Inc()
		return
	}
	p.Metrics.CacheMissesTotal.WithLabelValues("grants").Inc()
}

// doGET performs a throttled GET request with authentication
func (p *GrantsProvider) doGET(ctx context.Context, endpoint string) (body []byte, err error) {
	defer func() { recordCall(p.Metrics, "grants", err) }()

	if p.Throttle != nil {
		if err := p.Throttle.Wait(ctx); err != nil {
			return nil, &ProviderError{
				Code:    constants.ErrCodeRateLimited,
				Message: "Throttle wait aborted",
				Err:     err,
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+endpoint, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	if p.APIKey != "" {
		req.Header.Set("X-API-KEY", p.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, endpoint); err != nil {
		return nil, err
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Err:     err,
		}
	}
	return body, nil
}
