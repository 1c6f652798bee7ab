package services

import (
	"context"
	"strconv"
	"strings"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/providers"
)

// GeolocationService fills coordinates and normalized address fields of addresses
// marked SHOULD_ENRICH, in one geocoder call per batch
type GeolocationService struct {
	geocoder providers.Geocoder
}

func NewGeolocationService(geocoder providers.Geocoder) *GeolocationService {
	return &GeolocationService{geocoder: geocoder}
}

type addressRef struct {
	mission *gorm.Mission
	index   int
}

func geocodeKey(clientID string, index int) string {
	return clientID + "#" + strconv.Itoa(index)
}

// Enrich mutates addresses in place. A geocoder failure marks every pending
// address FAILED and returns normally.
func (s *GeolocationService) Enrich(ctx context.Context, missions []*gorm.Mission) {
	pending := make(map[string]addressRef)
	var rows []dtos.GeocodeRequestRow

	for _, m := range missions {
		for i := range m.Addresses {
			address := &m.Addresses[i]
			if address.GeolocStatus != constants.GeolocShouldEnrich {
				continue
			}
			pending[geocodeKey(m.ClientID, i)] = addressRef{mission: m, index: i}
			rows = append(rows, dtos.GeocodeRequestRow{
				ClientID:       m.ClientID,
				AddressIndex:   i,
				Address:        address.Street,
				City:           address.City,
				PostCode:       address.PostalCode,
				DepartmentCode: address.DepartmentCode,
			})
		}
	}
	if len(rows) == 0 {
		return
	}

	results, err := s.geocoder.Geocode(ctx, rows)
	if err != nil {
		logging.Warn("[Geolocation] Geocoder call failed, addresses marked FAILED", "addresses", len(rows), "error", err)
		for _, ref := range pending {
			ref.mission.Addresses[ref.index].GeolocStatus = constants.GeolocFailed
		}
		return
	}

	enriched := 0
	for _, result := range results {
		key := geocodeKey(result.ClientID, result.AddressIndex)
		ref, ok := pending[key]
		if !ok {
			continue
		}
		delete(pending, key)
		if applyGeocodeResult(&ref.mission.Addresses[ref.index], result) {
			enriched++
		}
	}

	// Rows the geocoder did not answer
	for _, ref := range pending {
		ref.mission.Addresses[ref.index].GeolocStatus = constants.GeolocNotFound
	}

	logging.Debug("[Geolocation] Batch geocoded", "addresses", len(rows), "enriched", enriched)
}

// applyGeocodeResult accepts a match only above the score threshold
func applyGeocodeResult(address *gorm.Address, result dtos.GeocodeResult) bool {
	if result.Score <= constants.GeocoderMinScore || result.Latitude == nil || result.Longitude == nil {
		address.GeolocStatus = constants.GeolocNotFound
		return false
	}

	lat, lon := *result.Latitude, *result.Longitude
	address.Latitude = &lat
	address.Longitude = &lon
	if result.Name != "" {
		address.Street = result.Name
	}
	if result.City != "" {
		address.City = result.City
	}
	if result.PostCode != "" {
		address.PostalCode = result.PostCode
	}
	applyDepartment(address, result.Context)
	address.GeolocStatus = constants.GeolocEnriched
	return true
}

// applyDepartment sets department and region from the geocoder context
// ("75, Paris, Île-de-France"), falling back to the postal code
func applyDepartment(address *gorm.Address, resultContext string) {
	parts := strings.Split(resultContext, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	code := ""
	if len(parts) > 0 {
		code = parts[0]
	}
	if code == "" {
		code = constants.DepartmentCodeFromPostalCode(address.PostalCode)
	}

	if dept, ok := constants.LookupDepartment(code); ok {
		address.DepartmentCode = dept.Code
		address.DepartmentName = dept.Name
		address.Region = dept.Region
		return
	}
	if code != "" {
		address.DepartmentCode = code
	}
	if len(parts) >= 3 {
		address.DepartmentName = parts[1]
		address.Region = parts[2]
	}
}
