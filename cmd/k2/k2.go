package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/born-ml/k2/internal/check"
	"github.com/born-ml/k2/ragged"

	"github.com/scott-cotton/cli"
)

func k2Main(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	cfg.applyFile(func(name string) bool { return optSet(cfg.Main, name) })
	cfg.colorSet = cfg.colorSet || optSet(cfg.Main, "color")
	if cfg.V {
		theLog = newLog(os.Stderr, slog.LevelDebug)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	theLog.Debug("running", "command", args[0], "dtype", cfg.DType, "device", cfg.Device)
	err = recoverChecks(func() error { return sub.Run(cc, args[1:]) })
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

// recoverChecks runs a command, reporting a failed internal check as an
// error instead of a crash.
func recoverChecks(run func() error) (err error) {
	defer check.Recover(&err)
	return run()
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644) //nolint:gosec // G302: output file
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// readInputs returns the text of each argument. "-" reads in and "@path"
// reads a file; any other argument is its own text. Without arguments in is
// read.
func readInputs(in io.Reader, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	res := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "-":
			d, err := io.ReadAll(in)
			if err != nil {
				return nil, fmt.Errorf("error reading stdin: %w", err)
			}
			res = append(res, string(d))
		case strings.HasPrefix(arg, "@"):
			d, err := os.ReadFile(arg[1:])
			if err != nil {
				return nil, fmt.Errorf("error reading %s: %w", arg[1:], err)
			}
			res = append(res, string(d))
		default:
			res = append(res, arg)
		}
	}
	return res, nil
}

// readRagged parses every input as a ragged tensor with the configured dtype
// and device.
func readRagged(cfg *MainConfig, in io.Reader, args []string) ([]*ragged.RaggedAny, error) {
	texts, err := readInputs(in, args)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.raggedOpts()
	if err != nil {
		return nil, err
	}
	res := make([]*ragged.RaggedAny, len(texts))
	for i, text := range texts {
		r, err := ragged.FromString(text, opts...)
		if err != nil {
			return nil, fmt.Errorf("error parsing input %d: %w", i+1, err)
		}
		theLog.Debug("parsed", "input", i+1, "axes", r.NumAxes(), "dim0", r.Dim0(), "numel", r.NumElements(), "dtype", r.DType())
		res[i] = r
	}
	return res, nil
}

func writeRagged(cfg *MainConfig, w io.Writer, r *ragged.RaggedAny) error {
	_, err := fmt.Fprintln(w, cfg.colors(w).paint(r.ToString(cfg.Compact)))
	return err
}

func parseArgs(cmd *cli.Command, cc *cli.Context, args []string) ([]string, error) {
	args, err := cmd.Parse(cc, args)
	if err != nil {
		cmd.Usage(cc, err)
		return nil, cli.ExitCodeErr(1)
	}
	return args, nil
}
