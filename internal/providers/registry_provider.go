package providers

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/metrics"
)

// RegistryColumns is the fixed schema of the national association registry dump
var RegistryColumns = []string{
	"id", "id_ex", "siret", "rup_mi", "gestion", "date_creat", "date_decla", "date_publi",
	"date_disso", "nature", "groupement", "titre", "titre_court", "objet", "objet_social1",
	"objet_social2", "adrs_complement", "adrs_numvoie", "adrs_repetition", "adrs_typevoie",
	"adrs_libvoie", "adrs_distrib", "adrs_codeinsee", "adrs_codepostal", "adrs_libcommune",
	"adrg_declarant", "adrg_complemid", "adrg_libvoie", "adrg_distrib", "adrg_codepostal",
	"adrg_achemine", "adrg_pays", "dir_civilite", "siteweb", "publiweb", "observation",
	"position", "maj_time",
}

// RegistryRow is one registry record, addressed by column name
type RegistryRow map[string]string

// RegistryStats counts what a registry read went through
type RegistryStats struct {
	Files   int
	Rows    int
	Skipped int
}

// RegistryProvider reads the zipped semicolon CSV registry from a local path or a URL
type RegistryProvider struct {
	Client  *http.Client
	Metrics *metrics.MetricsRegistry
}

func NewRegistryProvider(metricsReg *metrics.MetricsRegistry) *RegistryProvider {
	return &RegistryProvider{
		Client: &http.Client{
			Timeout: 30 * time.Minute,
		},
		Metrics: metricsReg,
	}
}

// ReadRegistry calls fn for every well-formed row of every CSV file in the archive.
// Rows without the full column set are skipped and counted.
func (p *RegistryProvider) ReadRegistry(ctx context.Context, source string, fn func(row RegistryRow) error) (RegistryStats, error) {
	var stats RegistryStats

	archivePath, cleanup, err := p.localArchive(ctx, source)
	if err != nil {
		return stats, err
	}
	defer cleanup()

	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return stats, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to open registry archive",
			Err:     err,
		}
	}
	defer archive.Close()

	for _, file := range archive.File {
		if !strings.EqualFold(path.Ext(file.Name), ".csv") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Files++
		if err := readRegistryFile(file, fn, &stats); err != nil {
			return stats, fmt.Errorf("registry file %s: %w", file.Name, err)
		}
	}

	return stats, nil
}

func readRegistryFile(file *zip.File, fn func(row RegistryRow) error, stats *RegistryStats) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Skipped++
				continue
			}
			return err
		}
		if len(record) != len(RegistryColumns) {
			stats.Skipped++
			continue
		}
		if strings.TrimPrefix(record[0], "\ufeff") == RegistryColumns[0] {
			continue
		}

		row := make(RegistryRow, len(RegistryColumns))
		for i, column := range RegistryColumns {
			row[column] = strings.TrimSpace(record[i])
		}
		stats.Rows++
		if err := fn(row); err != nil {
			return err
		}
	}
}

// localArchive returns a file path for source, downloading it first when it is a URL
func (p *RegistryProvider) localArchive(ctx context.Context, source string) (archivePath string, cleanup func(), err error) {
	noop := func() {}
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return source, noop, nil
	}
	defer func() { recordCall(p.Metrics, "registry", err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", noop, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", noop, networkError(err)
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, source); err != nil {
		return "", noop, err
	}

	tmp, err := os.CreateTemp("", "registry-*.zip")
	if err != nil {
		return "", noop, err
	}
	remove := func() { _ = os.Remove(tmp.Name()) }

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		remove()
		return "", noop, networkError(err)
	}

	logging.Info("[Registry] Downloaded registry archive", "source", source, "bytes", written)
	return tmp.Name(), remove, nil
}
