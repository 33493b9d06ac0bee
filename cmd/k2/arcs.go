package main

import (
	"fmt"
	"io"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/bridge"
	"github.com/born-ml/k2/internal/fsa"
	"github.com/born-ml/k2/tensor"

	"github.com/scott-cotton/cli"
)

func arcs(cfg *ArcsConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Arcs, cc, args)
	if err != nil {
		return err
	}
	for i := range args {
		if args[i] != "-" {
			args[i] = "@" + args[i]
		}
	}
	return arcsArgs(cfg, cc.Out, cc.In, args)
}

// arcsArgs prints each automaton as its arc tensor: a header, then one
// "[src, dest, label, score]" row per arc.
func arcsArgs(cfg *ArcsConfig, w io.Writer, in io.Reader, args []string) error {
	place := tensor.CPUPlace()
	if cfg.Device != "" {
		p, err := tensor.ParsePlace(cfg.Device)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		if p.Type != tensor.CPU && p.Type != tensor.CUDA {
			return fmt.Errorf("%w: unsupported device %s", cli.ErrUsage, p)
		}
		place = p
	}
	texts, err := readInputs(in, args)
	if err != nil {
		return err
	}
	c := cfg.colors(w)
	for i, text := range texts {
		f, err := fsa.Parse(text)
		if err != nil {
			return fmt.Errorf("error parsing automaton %d: %w", i+1, err)
		}
		t := bridge.ArcsToTensor(array.FromSlice(bridge.GetContext(place), f.Arcs))
		theLog.Debug("arcs", "input", i+1, "num_arcs", len(f.Arcs), "final_state", f.FinalState)
		if _, err := fmt.Fprintln(w, c.paint(t.String())); err != nil {
			return err
		}
		ints := tensor.Values[int32](t)
		scores := tensor.Values[float32](bridge.AsFloat(t))
		for a := 0; a < len(f.Arcs); a++ {
			row := ints[a*fsa.ArcFields : (a+1)*fsa.ArcFields]
			score := formatNumber(scores[a*fsa.ArcFields+3])
			if cfg.Raw {
				score = formatNumber(row[3])
			}
			line := fmt.Sprintf("[%d, %d, %d, %s]", row[0], row[1], row[2], score)
			if _, err := fmt.Fprintln(w, c.paint(line)); err != nil {
				return err
			}
		}
	}
	return nil
}
