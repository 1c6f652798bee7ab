package services

import (
	"context"

	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/providers"
)

// Mock Geocoder
type mockGeocoder struct {
	geocodeFunc func(ctx context.Context, rows []dtos.GeocodeRequestRow) ([]dtos.GeocodeResult, error)
	calls       int
}

func (m *mockGeocoder) Geocode(ctx context.Context, rows []dtos.GeocodeRequestRow) ([]dtos.GeocodeResult, error) {
	m.calls++
	return m.geocodeFunc(ctx, rows)
}

// Mock GrantsClient
type mockGrantsClient struct {
	getAssociationFunc   func(ctx context.Context, rna string) (*dtos.GrantsAssociation, error)
	getEstablishmentFunc func(ctx context.Context, siret string) (*dtos.GrantsEstablishment, error)
	associationCalls     int
	establishmentCalls   int
}

func (m *mockGrantsClient) GetAssociation(ctx context.Context, rna string) (*dtos.GrantsAssociation, error) {
	m.associationCalls++
	if m.getAssociationFunc == nil {
		return nil, nil
	}
	return m.getAssociationFunc(ctx, rna)
}

func (m *mockGrantsClient) GetEstablishment(ctx context.Context, siret string) (*dtos.GrantsEstablishment, error) {
	m.establishmentCalls++
	if m.getEstablishmentFunc == nil {
		return nil, nil
	}
	return m.getEstablishmentFunc(ctx, siret)
}

// Mock RegistrySource
type mockRegistrySource struct {
	rows []providers.RegistryRow
}

func (m *mockRegistrySource) ReadRegistry(ctx context.Context, source string, fn func(row providers.RegistryRow) error) (providers.RegistryStats, error) {
	stats := providers.RegistryStats{Files: 1}
	for _, row := range m.rows {
		if err := fn(row); err != nil {
			return stats, err
		}
		stats.Rows++
	}
	return stats, nil
}

func floatPtr(f float64) *float64 {
	return &f
}
