package main

import (
	"fmt"
	"io"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/scott-cotton/cli"
)

func filter(cfg *FilterConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Filter, cc, args)
	if err != nil {
		return err
	}
	return filterArgs(cfg, cc.Out, cc.In, args)
}

func filterArgs(cfg *FilterConfig, w io.Writer, in io.Reader, args []string) error {
	if cfg.Where == "" {
		return fmt.Errorf("%w: filter requires -where", cli.ErrUsage)
	}
	prg, err := compileWhere(cfg.Where)
	if err != nil {
		return err
	}
	rs, err := readRagged(cfg.MainConfig, in, args)
	if err != nil {
		return err
	}
	for i, r := range rs {
		var runErr error
		env := map[string]any{"x": 0.0}
		kept := r.RemoveValuesIf(func(x float64) bool {
			if runErr != nil {
				return false
			}
			env["x"] = x
			out, err := expr.Run(prg, env)
			if err != nil {
				runErr = err
				return false
			}
			return !out.(bool)
		})
		if runErr != nil {
			return fmt.Errorf("error evaluating %q on input %d: %w", cfg.Where, i+1, runErr)
		}
		if err := writeRagged(cfg.MainConfig, w, kept); err != nil {
			return err
		}
	}
	return nil
}

// compileWhere compiles a boolean expression over the float64 variable x.
func compileWhere(where string) (*vm.Program, error) {
	prg, err := expr.Compile(where, whereOpts()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return prg, nil
}

func whereOpts() []expr.Option {
	return []expr.Option{
		expr.Env(map[string]any{"x": 0.0}),
		expr.AsBool(),
		expr.Function("isnan", func(params ...any) (any, error) {
			return math.IsNaN(params[0].(float64)), nil
		}, new(func(float64) bool)),
		expr.Function("isinf", func(params ...any) (any, error) {
			return math.IsInf(params[0].(float64), 0), nil
		}, new(func(float64) bool)),
	}
}
