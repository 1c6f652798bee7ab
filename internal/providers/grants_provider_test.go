package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"civic-engagement/missionhub/internal/common"
)

const associationPayload = `{
	"association": {
		"rna": [{"value": "W751234567"}],
		"siren": [{"value": "123456789"}],
		"denomination_rna": [{"value": "Les Amis du Quartier"}],
		"adresse_siege_rna": [{"value": {"numero": "3", "type_voie": "rue", "voie": "des Lilas", "code_postal": "75011", "commune": "Paris"}}]
	}
}`

func TestGrantsProvider_GetAssociation_CachesResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/association/W751234567" {
			t.Errorf("Expected path /association/W751234567, got %s", r.URL.Path)
		}
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("X-API-KEY"))
		}
		w.Write([]byte(associationPayload))
	}))
	defer server.Close()

	provider := NewGrantsProvider(server.URL, "test-key", common.NewThrottle(1000, 1),
		common.NewCacheService(time.Hour, time.Hour), time.Hour, nil)

	for i := 0; i < 2; i++ {
		asso, err := provider.GetAssociation(context.Background(), "W751234567")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if asso == nil {
			t.Fatal("Expected an association")
		}
		if asso.DenominationRNA.First() != "Les Amis du Quartier" {
			t.Errorf("Expected denomination, got %q", asso.DenominationRNA.First())
		}
		if asso.HeadOfficeAddress.First().PostalCode != "75011" {
			t.Errorf("Expected postal code 75011, got %q", asso.HeadOfficeAddress.First().PostalCode)
		}
	}

	if calls != 1 {
		t.Errorf("Expected 1 API call, got %d", calls)
	}
}

func TestGrantsProvider_GetEstablishment_NotFoundIsCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewGrantsProvider(server.URL, "", nil, common.NewCacheService(time.Hour, time.Hour), time.Hour, nil)

	for i := 0; i < 3; i++ {
		etab, err := provider.GetEstablishment(context.Background(), "12345678900012")
		if err != nil {
			t.Fatalf("Expected no error for not found, got %v", err)
		}
		if etab != nil {
			t.Errorf("Expected nil establishment, got %+v", etab)
		}
	}

	if calls != 1 {
		t.Errorf("Expected 1 API call, got %d", calls)
	}
}

func TestGrantsProvider_ServerErrorIsNotCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewGrantsProvider(server.URL, "", nil, common.NewCacheService(time.Hour, time.Hour), time.Hour, nil)

	for i := 0; i < 2; i++ {
		if _, err := provider.GetAssociation(context.Background(), "W751234567"); err == nil {
			t.Fatal("Expected error for 500 response")
		}
	}

	if calls != 2 {
		t.Errorf("Expected 2 API calls, got %d", calls)
	}
}

func TestGrantsProvider_ThrottleSpacesCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	// 20 calls per second, burst 1: three uncached calls need at least ~100ms
	provider := NewGrantsProvider(server.URL, "", common.NewThrottle(20, 1), nil, time.Hour, nil)

	start := time.Now()
	for _, rna := range []string{"W000000001", "W000000002", "W000000003"} {
		if _, err := provider.GetAssociation(context.Background(), rna); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("Expected throttled calls to take at least 90ms, took %s", elapsed)
	}
}
