package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
)

func pad(cfg *PadConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Pad, cc, args)
	if err != nil {
		return err
	}
	return padArgs(cfg, cc.Out, cc.In, args)
}

func padArgs(cfg *PadConfig, w io.Writer, in io.Reader, args []string) error {
	if cfg.Mode != "constant" && cfg.Mode != "replicate" {
		return fmt.Errorf("%w: unknown mode %q (want constant or replicate)", cli.ErrUsage, cfg.Mode)
	}
	rs, err := readRagged(cfg.MainConfig, in, args)
	if err != nil {
		return err
	}
	for i, r := range rs {
		padded, err := r.Pad(cfg.Mode, cfg.Value)
		if err != nil {
			return fmt.Errorf("error padding input %d: %w", i+1, err)
		}
		if err := writeTensor(cfg.MainConfig, w, "", padded); err != nil {
			return err
		}
	}
	return nil
}
