package main

import (
	"log"

	"covidpipe/internal/publish"
)

type publishCmd struct {
	DestDir string `arg:"" default:"public" help:"Directory the website serves."`
}

func (c *publishCmd) Run(g *Globals) error {
	if err := publish.Run(g.DataDir, c.DestDir); err != nil {
		return err
	}
	log.Printf("publish: outputs collected in %s", c.DestDir)
	writeMetrics(g, "publish")
	return nil
}
