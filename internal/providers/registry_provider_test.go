package providers

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func registryLine(values map[string]string) string {
	fields := make([]string, len(RegistryColumns))
	for i, column := range RegistryColumns {
		fields[i] = values[column]
	}
	return strings.Join(fields, ";")
}

func writeRegistryZip(t *testing.T, lines []string) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "rna.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("rna_waldec_75.csv")
	if err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}
	w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	notes, _ := zw.Create("README.txt")
	notes.Write([]byte("not a csv"))
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
	f.Close()
	return archivePath
}

func TestRegistryProvider_ReadRegistry_LocalFile(t *testing.T) {
	archivePath := writeRegistryZip(t, []string{
		strings.Join(RegistryColumns, ";"),
		registryLine(map[string]string{"id": "W751000001", "titre": "CLUB DE LECTURE", "adrs_codepostal": "75011"}),
		"W751000002;too;short",
		registryLine(map[string]string{"id": "W751000003", "titre": "JARDINS PARTAGES"}),
	})

	provider := NewRegistryProvider(nil)

	var ids []string
	stats, err := provider.ReadRegistry(context.Background(), archivePath, func(row RegistryRow) error {
		ids = append(ids, row["id"])
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Files != 1 {
		t.Errorf("Expected 1 CSV file, got %d", stats.Files)
	}
	if stats.Rows != 2 || len(ids) != 2 {
		t.Errorf("Expected 2 rows, got %d (%v)", stats.Rows, ids)
	}
	if stats.Skipped != 1 {
		t.Errorf("Expected 1 skipped row, got %d", stats.Skipped)
	}
	if ids[0] != "W751000001" {
		t.Errorf("Expected first id W751000001, got %s", ids[0])
	}
}

func TestRegistryProvider_ReadRegistry_Download(t *testing.T) {
	archivePath := writeRegistryZip(t, []string{
		registryLine(map[string]string{"id": "W751000001", "titre": "CLUB DE LECTURE"}),
	})
	raw, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("Failed to read archive: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(raw)
	}))
	defer server.Close()

	provider := &RegistryProvider{Client: &http.Client{}}

	stats, err := provider.ReadRegistry(context.Background(), server.URL+"/rna.zip", func(row RegistryRow) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.Rows != 1 {
		t.Errorf("Expected 1 row, got %d", stats.Rows)
	}
}
