package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"covidpipe/internal/publish"
	"covidpipe/internal/report"
)

type reportCmd struct {
	Global reportGlobalCmd `cmd:"" help:"Render the global report from the merged time series."`
	Mx     reportMxCmd     `cmd:"" help:"Render the Mexican report from the resolved line list."`
}

type reportGlobalCmd struct{}

func (c *reportGlobalCmd) Run(g *Globals) error {
	store, err := report.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	path := filepath.Join(g.DataDir, publish.GlobalDataFile)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	rows, err := store.LoadGlobal(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Printf("report: loaded %d global rows", rows)

	if err := report.NewReporter(store, g.DataDir).Global(); err != nil {
		return err
	}
	log.Printf("report: wrote %s", filepath.Join(g.DataDir, "global_report.md"))
	writeMetrics(g, "report")
	return nil
}

type reportMxCmd struct{}

func (c *reportMxCmd) Run(g *Globals) error {
	store, err := report.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	path := filepath.Join(g.DataDir, publish.MxDataFile)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	rows, err := store.LoadCases(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Printf("report: loaded %d line list rows", rows)

	if err := report.NewReporter(store, g.DataDir).Mexico(); err != nil {
		return err
	}
	log.Printf("report: wrote %s", filepath.Join(g.DataDir, "mx_report.md"))
	writeMetrics(g, "report")
	return nil
}
