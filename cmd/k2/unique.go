package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
)

func unique(cfg *UniqueConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Unique, cc, args)
	if err != nil {
		return err
	}
	return uniqueArgs(cfg, cc.Out, cc.In, args)
}

func uniqueArgs(cfg *UniqueConfig, w io.Writer, in io.Reader, args []string) error {
	rs, err := readRagged(cfg.MainConfig, in, args)
	if err != nil {
		return err
	}
	for i, r := range rs {
		u, repeats, new2old, err := r.Unique(cfg.Counts, cfg.Order)
		if err != nil {
			return fmt.Errorf("error in input %d: %w", i+1, err)
		}
		if err := writeRagged(cfg.MainConfig, w, u); err != nil {
			return err
		}
		if cfg.Counts {
			if err := writeRagged(cfg.MainConfig, w, repeats); err != nil {
				return err
			}
		}
		if cfg.Order {
			if err := writeTensor(cfg.MainConfig, w, "new2old", new2old); err != nil {
				return err
			}
		}
	}
	return nil
}
