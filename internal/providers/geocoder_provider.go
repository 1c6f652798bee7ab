package providers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/models/dtos"
)

// Request CSV header; the geocoder echoes input columns in its response
var geocodeRequestHeader = []string{"clientid", "addressindex", "address", "city", "postcode", "departmentcode"}

// GeocoderProvider calls the batch CSV geocoder (api-adresse /search/csv/)
type GeocoderProvider struct {
	BaseURL string
	Client  *http.Client
	Metrics *metrics.MetricsRegistry
}

func NewGeocoderProvider(baseURL string, metricsReg *metrics.MetricsRegistry) *GeocoderProvider {
	return &GeocoderProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 2 * time.Minute,
		},
		Metrics: metricsReg,
	}
}

// Geocode submits all rows in a single multipart request and returns one result per response line
func (p *GeocoderProvider) Geocode(ctx context.Context, rows []dtos.GeocodeRequestRow) (results []dtos.GeocodeResult, err error) {
	if len(rows) == 0 {
		return nil, nil
	}
	defer func() { recordCall(p.Metrics, "geocoder", err) }()

	body, contentType, err := buildGeocodeRequest(rows)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to build geocoder payload",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, body)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, p.BaseURL); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read geocoder response",
			Err:     err,
		}
	}

	return ParseGeocodeResponse(raw)
}

func buildGeocodeRequest(rows []dtos.GeocodeRequestRow) (io.Reader, string, error) {
	var payload bytes.Buffer
	w := csv.NewWriter(&payload)
	w.Comma = ';'
	if err := w.Write(geocodeRequestHeader); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		record := []string{
			row.ClientID,
			strconv.Itoa(row.AddressIndex),
			row.Address,
			row.City,
			row.PostCode,
			row.DepartmentCode,
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("data", "addresses.csv")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload.Bytes()); err != nil {
		return nil, "", err
	}
	for _, column := range []string{"address", "city"} {
		if err := mw.WriteField("columns", column); err != nil {
			return nil, "", err
		}
	}
	if err := mw.WriteField("postcode", "postcode"); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &body, mw.FormDataContentType(), nil
}

// ParseGeocodeResponse reads the response CSV by header name. The delimiter is
// detected from the header line since the geocoder mirrors the request's.
func ParseGeocodeResponse(raw []byte) ([]dtos.GeocodeResult, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeEmptyPayload,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyPayload),
		}
	}

	headerLine := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		headerLine = raw[:i]
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = ';'
	if bytes.Count(headerLine, []byte(",")) > bytes.Count(headerLine, []byte(";")) {
		r.Comma = ','
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to parse geocoder CSV",
			Err:     err,
		}
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"clientid", "addressindex", "result_score"} {
		if _, ok := index[required]; !ok {
			return nil, &ProviderError{
				Code:    constants.ErrCodeInvalidDataFormat,
				Message: fmt.Sprintf("Geocoder response has no %s column", required),
			}
		}
	}

	get := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	getFloat := func(record []string, column string) *float64 {
		f, err := strconv.ParseFloat(get(record, column), 64)
		if err != nil {
			return nil
		}
		return &f
	}

	results := make([]dtos.GeocodeResult, 0, len(records)-1)
	for _, record := range records[1:] {
		addressIndex, err := strconv.Atoi(get(record, "addressindex"))
		if err != nil {
			continue
		}
		result := dtos.GeocodeResult{
			ClientID:     get(record, "clientid"),
			AddressIndex: addressIndex,
			Name:         get(record, "result_name"),
			Label:        get(record, "result_label"),
			PostCode:     get(record, "result_postcode"),
			City:         get(record, "result_city"),
			CityCode:     get(record, "result_citycode"),
			Context:      get(record, "result_context"),
			Latitude:     getFloat(record, "latitude"),
			Longitude:    getFloat(record, "longitude"),
		}
		if score := getFloat(record, "result_score"); score != nil {
			result.Score = *score
		}
		results = append(results, result)
	}

	return results, nil
}
