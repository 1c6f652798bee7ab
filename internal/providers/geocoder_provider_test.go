package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"civic-engagement/missionhub/internal/models/dtos"
)

func TestGeocoderProvider_Geocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		file, _, err := r.FormFile("data")
		if err != nil {
			t.Errorf("Expected data file in multipart form, got %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payload, _ := io.ReadAll(file)
		lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
		if lines[0] != "clientid;addressindex;address;city;postcode;departmentcode" {
			t.Errorf("Unexpected payload header %q", lines[0])
		}
		if len(lines) != 3 {
			t.Errorf("Expected 2 payload rows, got %d", len(lines)-1)
		}
		if got := r.MultipartForm.Value["columns"]; len(got) != 2 {
			t.Errorf("Expected 2 columns fields, got %v", got)
		}

		w.Write([]byte("clientid;addressindex;address;city;postcode;departmentcode;latitude;longitude;result_label;result_score;result_name;result_postcode;result_city;result_context\n" +
			"m1;0;1 rue de Rivoli;Paris;75001;75;48.8606;2.3376;1 Rue de Rivoli 75001 Paris;0.91;1 Rue de Rivoli;75001;Paris;75, Paris, Île-de-France\n" +
			"m2;0;nowhere;;;;;;;0.12;;;;\n"))
	}))
	defer server.Close()

	provider := &GeocoderProvider{BaseURL: server.URL, Client: &http.Client{}}

	results, err := provider.Geocode(context.Background(), []dtos.GeocodeRequestRow{
		{ClientID: "m1", AddressIndex: 0, Address: "1 rue de Rivoli", City: "Paris", PostCode: "75001", DepartmentCode: "75"},
		{ClientID: "m2", AddressIndex: 0, Address: "nowhere"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.ClientID != "m1" || first.Score != 0.91 {
		t.Errorf("Unexpected first result %+v", first)
	}
	if first.Latitude == nil || *first.Latitude != 48.8606 {
		t.Errorf("Expected latitude 48.8606, got %v", first.Latitude)
	}
	if first.Context != "75, Paris, Île-de-France" {
		t.Errorf("Expected result_context, got %q", first.Context)
	}
	if results[1].Latitude != nil {
		t.Errorf("Expected no latitude for unmatched row, got %v", *results[1].Latitude)
	}
}

func TestGeocoderProvider_Geocode_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := &GeocoderProvider{BaseURL: server.URL, Client: &http.Client{}}

	_, err := provider.Geocode(context.Background(), []dtos.GeocodeRequestRow{{ClientID: "m1", Address: "x"}})
	if err == nil {
		t.Fatal("Expected error for 502 response")
	}
}

func TestParseGeocodeResponse_CommaDelimited(t *testing.T) {
	raw := []byte("clientid,addressindex,result_score,latitude,longitude\nm1,1,0.41,45.1,4.2\n")

	results, err := ParseGeocodeResponse(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].AddressIndex != 1 || results[0].Score != 0.41 {
		t.Errorf("Unexpected result %+v", results[0])
	}
}

func TestParseGeocodeResponse_MissingColumns(t *testing.T) {
	if _, err := ParseGeocodeResponse([]byte("foo;bar\n1;2\n")); err == nil {
		t.Error("Expected error for response without result_score")
	}
	if _, err := ParseGeocodeResponse([]byte("  \n")); err == nil {
		t.Error("Expected error for empty response")
	}
}
