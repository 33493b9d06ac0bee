package main

import (
	"io"

	"github.com/scott-cotton/cli"
)

func sortCmd(cfg *SortConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Sort, cc, args)
	if err != nil {
		return err
	}
	return sortArgs(cfg, cc.Out, cc.In, args)
}

func sortArgs(cfg *SortConfig, w io.Writer, in io.Reader, args []string) error {
	rs, err := readRagged(cfg.MainConfig, in, args)
	if err != nil {
		return err
	}
	for _, r := range rs {
		new2old := r.Sort(cfg.Descending, cfg.Order)
		if err := writeRagged(cfg.MainConfig, w, r); err != nil {
			return err
		}
		if cfg.Order {
			if err := writeTensor(cfg.MainConfig, w, "new2old", new2old); err != nil {
				return err
			}
		}
	}
	return nil
}
