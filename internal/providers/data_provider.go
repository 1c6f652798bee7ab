package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/models/dtos"
)

// FeedSource downloads raw partner feeds
type FeedSource interface {
	FetchFeed(ctx context.Context, feed FeedRequest) ([]byte, error)
}

// Geocoder resolves addresses in one batch call
type Geocoder interface {
	Geocode(ctx context.Context, rows []dtos.GeocodeRequestRow) ([]dtos.GeocodeResult, error)
}

// GrantsClient queries the grants registry API. A nil payload with a nil error means not found.
type GrantsClient interface {
	GetAssociation(ctx context.Context, rna string) (*dtos.GrantsAssociation, error)
	GetEstablishment(ctx context.Context, siret string) (*dtos.GrantsEstablishment, error)
}

// RegistrySource streams the rows of the national association registry dump
type RegistrySource interface {
	ReadRegistry(ctx context.Context, source string, fn func(row RegistryRow) error) (RegistryStats, error)
}

// ProviderError is returned by every provider on transport or payload failure
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a RESOURCE_NOT_FOUND provider error
func IsNotFound(err error) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr) && provErr.Code == constants.ErrCodeResourceNotFound
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, endpoint string, body string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeAuthenticationFailed,
			Message: fmt.Sprintf("Authentication failed for endpoint %s", endpoint),
			Details: body,
		}
	case http.StatusNotFound:
		return &ProviderError{
			Code:    constants.ErrCodeResourceNotFound,
			Message: fmt.Sprintf("Resource not found: %s", endpoint),
			Details: body,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: body,
		}
	case http.StatusBadRequest:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: fmt.Sprintf("Bad request to %s", endpoint),
			Details: body,
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeUpstreamError,
			Message: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details: body,
		}
	}
}

// handleHTTPError converts non-2xx responses to ProviderError
func handleHTTPError(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
}

func networkError(err error) error {
	return &ProviderError{
		Code:    constants.ErrCodeNetworkError,
		Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
		Err:     err,
	}
}

// recordCall counts one provider call; metricsReg may be nil
func recordCall(metricsReg *metrics.MetricsRegistry, provider string, err error) {
	if metricsReg == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			result = provErr.Code
		}
	}
	metricsReg.ProviderCallsTotal.WithLabelValues(provider, result).Inc()
}
