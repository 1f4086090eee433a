package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"covidpipe/internal/catalog"
	"covidpipe/internal/fetch"
	"covidpipe/internal/linelist"
	"covidpipe/internal/metrics"
	"covidpipe/internal/publish"
)

type mxCmd struct {
	CasesURL      string `name:"cases-url" default:"${cases_url}" help:"Line list archive URL."`
	DictionaryURL string `name:"dictionary-url" default:"${dictionary_url}" help:"Data dictionary archive URL."`
}

func (c *mxCmd) Run(g *Globals) error {
	if err := os.MkdirAll(g.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f := fetch.NewFetcher()

	casesArchive, err := f.Download(c.CasesURL, g.DataDir, "cases")
	if err != nil {
		return err
	}
	dictArchive, err := f.Download(c.DictionaryURL, g.DataDir, "dictionary")
	if err != nil {
		return err
	}

	casesPath, err := fetch.Extract(casesArchive, g.DataDir, fetch.IsCasesCSV)
	if err != nil {
		return err
	}
	workbookPath, err := fetch.Extract(dictArchive, g.DataDir, fetch.IsCatalogWorkbook)
	if err != nil {
		return err
	}

	set, err := catalog.Load(workbookPath)
	if err != nil {
		return err
	}
	log.Printf("mx: loaded catalogs (%d states, %d municipalities)", len(set.States), len(set.Municipalities))

	in, err := os.Open(casesPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", casesPath, err)
	}
	defer in.Close()

	outPath := filepath.Join(g.DataDir, publish.MxDataFile)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	rows, err := linelist.NewResolver(set).Resolve(in, out)
	if err != nil {
		out.Close()
		return fmt.Errorf("resolve %s: %w", casesPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	metrics.RowsResolvedTotal.Add(float64(rows))
	metrics.RowsWrittenTotal.WithLabelValues(publish.MxDataFile).Add(float64(rows))
	log.Printf("mx: wrote %s (%d rows)", outPath, rows)
	writeMetrics(g, "mx")
	return nil
}
