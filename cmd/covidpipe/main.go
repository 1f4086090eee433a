package main

import (
	"log"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"covidpipe/internal/fetch"
	"covidpipe/internal/metrics"
)

// Globals are shared by every subcommand.
type Globals struct {
	DataDir     string `name:"data-dir" default:"data" help:"Working directory for downloads and outputs."`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this path after the run."`
}

var cli struct {
	Globals

	Global  globalCmd  `cmd:"" help:"Fetch the global time series and merge them into one CSV."`
	Mx      mxCmd      `cmd:"" help:"Fetch the Mexican line list and resolve its catalog codes."`
	Report  reportCmd  `cmd:"" help:"Render markdown reports and charts from pipeline outputs."`
	Publish publishCmd `cmd:"" help:"Collect pipeline outputs for the website."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("covidpipe"),
		kong.Description("Batch pipeline for COVID-19 case data."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.Vars{
			"confirmed_url":  fetch.ConfirmedURL,
			"deaths_url":     fetch.DeathsURL,
			"recovered_url":  fetch.RecoveredURL,
			"cases_url":      fetch.CasesArchiveURL,
			"dictionary_url": fetch.DictionaryArchiveURL,
		},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

// writeMetrics is best effort. A failed metrics write must not fail a run
// that already produced its outputs.
func writeMetrics(g *Globals, component string) {
	if g.MetricsFile == "" {
		return
	}
	if err := metrics.WriteFile(g.MetricsFile); err != nil {
		log.Printf("%s: metrics: %v", component, err)
	}
}
