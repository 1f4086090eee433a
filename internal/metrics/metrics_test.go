package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile(t *testing.T) {
	FetchBytesTotal.WithLabelValues("cases").Add(123)
	RowsResolvedTotal.Inc()

	path := filepath.Join(t.TempDir(), "covidpipe.prom")
	if err := WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	content := string(raw)
	for _, want := range []string{
		"covidpipe_fetch_bytes_total",
		"covidpipe_rows_resolved_total",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("metrics file does not contain %s", want)
		}
	}
}

func TestWriteFile_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "covidpipe.prom")
	if err := WriteFile(path); err == nil {
		t.Error("WriteFile: expected error for missing directory")
	}
}
