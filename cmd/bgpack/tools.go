package main

import (
	"github.com/pkg/errors"

	"github.com/robert-malhotra/bgpack/internal/fontmodel"
	"github.com/robert-malhotra/bgpack/internal/viz"
)

type fontModelCommand struct {
	app *app

	Fonts  string `long:"fonts" description:"Directory searched recursively for fonts"`
	Output string `short:"o" long:"output" description:"Model container to write"`
	VizDir string `long:"viz" description:"Also save a diagnostic plot per font to this directory"`
}

func (c *fontModelCommand) Execute(args []string) error {
	if len(args) > 0 {
		return errors.Errorf("unexpected arguments %v", args)
	}
	if err := c.app.init(); err != nil {
		return err
	}
	cfg := c.app.cfg.FontModel
	if c.Fonts != "" {
		cfg.Fonts = c.Fonts
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}
	if c.VizDir != "" {
		cfg.VizDir = c.VizDir
	}
	_, err := fontmodel.Run(fontmodel.Options{Fonts: cfg.Fonts, Output: cfg.Output, VizDir: cfg.VizDir}, c.app.logger)
	return err
}

type vizCommand struct {
	app *app

	DB     string `long:"db" description:"Container with a data group of annotated images"`
	Out    string `long:"out" description:"Directory for the rendered images"`
	LineBB bool   `long:"line-bb" description:"Draw only line boxes"`
}

func (c *vizCommand) Execute(args []string) error {
	if len(args) > 0 {
		return errors.Errorf("unexpected arguments %v", args)
	}
	if err := c.app.init(); err != nil {
		return err
	}
	cfg := c.app.cfg.Viz
	if c.DB != "" {
		cfg.DB = c.DB
	}
	if c.Out != "" {
		cfg.Out = c.Out
	}
	if c.LineBB {
		cfg.LineOnly = true
	}
	_, err := viz.Render(viz.Options{DB: cfg.DB, Out: cfg.Out, LineOnly: cfg.LineOnly}, c.app.logger)
	return err
}
