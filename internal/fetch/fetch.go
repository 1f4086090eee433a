package fetch

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"covidpipe/internal/metrics"
)

// Published source locations. The JHU repository carries one time series
// per measure; the Mexican health ministry publishes the line list and its
// dictionary as zip archives.
const (
	ConfirmedURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_confirmed_global.csv"
	DeathsURL    = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_deaths_global.csv"
	RecoveredURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_recovered_global.csv"

	CasesArchiveURL      = "https://datosabiertos.salud.gob.mx/gobmx/salud/datos_abiertos/datos_abiertos_covid19.zip"
	DictionaryArchiveURL = "https://datosabiertos.salud.gob.mx/gobmx/salud/datos_abiertos/diccionario_datos_covid19.zip"
)

// downloadTimeout is generous because the line list archive runs to
// hundreds of megabytes.
const downloadTimeout = 15 * time.Minute

type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: downloadTimeout},
	}
}

// Download fetches url into destDir, named after the URL's last path
// element, and returns the file path. Sources publish complete snapshots,
// so a failed fetch aborts the run instead of retrying into a mixed state.
func (f *Fetcher) Download(url, destDir, source string) (string, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}

	dest := filepath.Join(destDir, path.Base(url))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	n, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		return "", fmt.Errorf("download %s: %w", source, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("download %s: %w", source, err)
	}

	metrics.FetchBytesTotal.WithLabelValues(source).Add(float64(n))
	log.Printf("fetch: downloaded %s (%d bytes)", dest, n)
	return dest, nil
}

// Extract unpacks the first archive member matching match into destDir and
// returns the extracted path. Member paths are flattened to their base name
// so archive layout cannot write outside destDir.
func Extract(archive, destDir string, match func(string) bool) (string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, member := range zr.File {
		if member.FileInfo().IsDir() || !match(member.Name) {
			continue
		}
		dest := filepath.Join(destDir, path.Base(member.Name))
		src, err := member.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", member.Name, err)
		}
		out, err := os.Create(dest)
		if err != nil {
			src.Close()
			return "", fmt.Errorf("create %s: %w", dest, err)
		}
		_, err = io.Copy(out, src)
		src.Close()
		if err != nil {
			out.Close()
			return "", fmt.Errorf("extract %s: %w", member.Name, err)
		}
		if err := out.Close(); err != nil {
			return "", fmt.Errorf("extract %s: %w", member.Name, err)
		}
		log.Printf("fetch: extracted %s from %s", dest, archive)
		return dest, nil
	}
	return "", fmt.Errorf("no member of %s matches", archive)
}

// IsCasesCSV matches the line list inside the data archive.
func IsCasesCSV(name string) bool {
	return strings.HasSuffix(strings.ToLower(path.Base(name)), ".csv")
}

// IsCatalogWorkbook matches the catalog workbook inside the dictionary
// archive, skipping the descriptor workbook that ships next to it.
func IsCatalogWorkbook(name string) bool {
	base := strings.ToLower(path.Base(name))
	return strings.Contains(base, "catalogo") && strings.HasSuffix(base, ".xlsx")
}
