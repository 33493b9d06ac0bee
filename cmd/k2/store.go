package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/born-ml/k2/ragged"

	"github.com/scott-cotton/cli"
)

func save(cfg *SaveConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Save, cc, args)
	if err != nil {
		return err
	}
	if cfg.Out == "" || cfg.Out == "-" {
		theLog.Warn("writing binary output to stdout, use -o to write a file")
	}
	return saveArgs(cfg, cc.Out, cc.In, args)
}

// saveArgs writes the name=ragged pairs of args as a SafeTensors file.
func saveArgs(cfg *SaveConfig, w io.Writer, in io.Reader, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: save requires name=ragged arguments", cli.ErrUsage)
	}
	names := make([]string, len(args))
	values := make([]string, len(args))
	for i, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return fmt.Errorf("%w: %q is not name=ragged", cli.ErrUsage, arg)
		}
		names[i], values[i] = name, value
	}
	rs, err := readRagged(cfg.MainConfig, in, values)
	if err != nil {
		return err
	}
	tensors := make(map[string]*ragged.RaggedAny, len(rs))
	for i, r := range rs {
		if _, dup := tensors[names[i]]; dup {
			return fmt.Errorf("%w: duplicate name %q", cli.ErrUsage, names[i])
		}
		tensors[names[i]] = r
	}
	return ragged.WriteTensors(w, tensors)
}

func load(cfg *LoadConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Load, cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: load requires files", cli.ErrUsage)
	}
	for _, arg := range args {
		opts, err := cfg.raggedOpts()
		if err != nil {
			return err
		}
		tensors, err := ragged.Load(arg, opts...)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", arg, err)
		}
		if err := writeNamed(cfg.MainConfig, cc.Out, tensors); err != nil {
			return err
		}
	}
	return nil
}

// writeNamed prints the tensors in name order as "name: ragged".
func writeNamed(cfg *MainConfig, w io.Writer, tensors map[string]*ragged.RaggedAny) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	c := cfg.colors(w)
	for _, name := range names {
		label := name
		if c != nil {
			label = c.Word("%s", name)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", label, c.paint(tensors[name].ToString(cfg.Compact))); err != nil {
			return err
		}
	}
	return nil
}
