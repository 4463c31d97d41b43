package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/bgpack/internal/pack"
	"github.com/robert-malhotra/bgpack/internal/setup"
)

type packCommand struct {
	app *app

	Input       string `short:"i" long:"input" description:"Dataset root with imnames.cp, bg_img, depth.h5 and seg.h5"`
	Output      string `short:"o" long:"output" description:"Container to write, replaced if present"`
	Limit       int    `long:"limit" default:"-1" description:"Write at most this many entries, -1 for no limit"`
	MetricsFile string `long:"metrics-file" description:"Write run metrics in Prometheus text format"`
}

func (c *packCommand) Execute(args []string) error {
	if len(args) > 0 {
		return errors.Errorf("unexpected arguments %v", args)
	}
	if err := c.app.init(); err != nil {
		return err
	}
	cfg := c.app.cfg.Pack
	if c.Input != "" {
		cfg.Input = c.Input
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}
	if c.Limit != -1 {
		limit := c.Limit
		cfg.Limit = &limit
	}
	if c.MetricsFile != "" {
		cfg.MetricsFile = c.MetricsFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_, err := pack.Run(ctx, pack.Options{
		Input:       cfg.Input,
		Output:      cfg.Output,
		Limit:       cfg.Limit,
		MetricsFile: cfg.MetricsFile,
		Registry:    setup.Registry(),
	}, c.app.logger)
	return err
}
