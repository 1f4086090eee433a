package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"covidpipe/internal/fetch"
	"covidpipe/internal/metrics"
	"covidpipe/internal/publish"
	"covidpipe/internal/timeseries"
)

type globalCmd struct {
	ConfirmedURL string `name:"confirmed-url" default:"${confirmed_url}" help:"Confirmed cases time series URL."`
	DeathsURL    string `name:"deaths-url" default:"${deaths_url}" help:"Deaths time series URL."`
	RecoveredURL string `name:"recovered-url" default:"${recovered_url}" help:"Recovered cases time series URL."`
}

func (c *globalCmd) Run(g *Globals) error {
	if err := os.MkdirAll(g.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f := fetch.NewFetcher()

	confirmedPath, err := f.Download(c.ConfirmedURL, g.DataDir, "confirmed")
	if err != nil {
		return err
	}
	deathsPath, err := f.Download(c.DeathsURL, g.DataDir, "deaths")
	if err != nil {
		return err
	}
	recoveredPath, err := f.Download(c.RecoveredURL, g.DataDir, "recovered")
	if err != nil {
		return err
	}

	confirmed, err := readSource(confirmedPath)
	if err != nil {
		return err
	}
	table := timeseries.BuildSkeleton(confirmed)
	log.Printf("global: skeleton has %d dates x %d countries", len(table.Dates), len(table.Regions))

	if err := mergeSource(table, confirmed, timeseries.Confirmed); err != nil {
		return err
	}
	deaths, err := readSource(deathsPath)
	if err != nil {
		return err
	}
	if err := mergeSource(table, deaths, timeseries.Deaths); err != nil {
		return err
	}
	recovered, err := readSource(recoveredPath)
	if err != nil {
		return err
	}
	if err := mergeSource(table, recovered, timeseries.Recovered); err != nil {
		return err
	}

	outPath := filepath.Join(g.DataDir, publish.GlobalDataFile)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := table.WriteCSV(out); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	rows := len(table.Dates) * len(table.Regions)
	metrics.RowsWrittenTotal.WithLabelValues(publish.GlobalDataFile).Add(float64(rows))
	log.Printf("global: wrote %s (%d rows)", outPath, rows)
	writeMetrics(g, "global")
	return nil
}

func mergeSource(table *timeseries.Table, src *timeseries.Source, m timeseries.Measure) error {
	dropped, err := table.Merge(src, m)
	if err != nil {
		return err
	}
	metrics.RowsMergedTotal.WithLabelValues(m.String()).Add(float64(len(src.Rows) - dropped))
	metrics.RowsDroppedTotal.WithLabelValues(m.String()).Add(float64(dropped))
	if dropped > 0 {
		log.Printf("global: dropped %d %s rows for regions outside the skeleton", dropped, m)
	}
	return nil
}

func readSource(path string) (*timeseries.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	src, err := timeseries.ReadSource(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return src, nil
}
