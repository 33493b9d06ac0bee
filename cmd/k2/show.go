package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
)

func show(cfg *ShowConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Show, cc, args)
	if err != nil {
		return err
	}
	return showArgs(cfg, cc.Out, cc.In, args)
}

func showArgs(cfg *ShowConfig, w io.Writer, in io.Reader, args []string) error {
	rs, err := readRagged(cfg.MainConfig, in, args)
	if err != nil {
		return err
	}
	for _, r := range rs {
		if cfg.Info {
			fmt.Fprintf(w, "axes=%d dim0=%d numel=%d dtype=%s device=%s\n",
				r.NumAxes(), r.Dim0(), r.NumElements(), r.DType(), r.Place())
			for axis := 1; axis < r.NumAxes(); axis++ {
				splits, err := r.Shape().RowSplits(axis)
				if err != nil {
					return err
				}
				if err := writeTensor(cfg.MainConfig, w, fmt.Sprintf("row_splits%d", axis), splits); err != nil {
					return err
				}
			}
		}
		if err := writeRagged(cfg.MainConfig, w, r); err != nil {
			return err
		}
	}
	return nil
}
