package main

import (
	"fmt"
	"io"

	"github.com/born-ml/k2/ragged"
	"github.com/born-ml/k2/tensor"

	"github.com/scott-cotton/cli"
)

func reduce(cfg *ReduceConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Reduce, cc, args)
	if err != nil {
		return err
	}
	return reduceArgs(cfg, cc.Out, cc.In, args)
}

func reduceArgs(cfg *ReduceConfig, w io.Writer, in io.Reader, args []string) error {
	op, err := reduceOp(cfg.Op)
	if err != nil {
		return err
	}
	rs, err := readRagged(cfg.MainConfig, in, args)
	if err != nil {
		return err
	}
	initial := cfg.initial()
	theLog.Debug("reducing", "op", cfg.Op, "initial", initial)
	for i, r := range rs {
		res, err := op(r, initial)
		if err != nil {
			return fmt.Errorf("error reducing input %d: %w", i+1, err)
		}
		if err := writeTensor(cfg.MainConfig, w, "", res); err != nil {
			return err
		}
	}
	return nil
}

type reduceFunc func(r *ragged.RaggedAny, initial float64) (*tensor.RawTensor, error)

func reduceOp(name string) (reduceFunc, error) {
	noErr := func(f func(*ragged.RaggedAny, float64) *tensor.RawTensor) reduceFunc {
		return func(r *ragged.RaggedAny, initial float64) (*tensor.RawTensor, error) {
			return f(r, initial), nil
		}
	}
	switch name {
	case "sum":
		return noErr((*ragged.RaggedAny).Sum), nil
	case "logsumexp":
		return (*ragged.RaggedAny).LogSumExp, nil
	case "max":
		return noErr((*ragged.RaggedAny).Max), nil
	case "min":
		return noErr((*ragged.RaggedAny).Min), nil
	case "argmax":
		return noErr((*ragged.RaggedAny).ArgMax), nil
	}
	return nil, fmt.Errorf("%w: unknown op %q (want sum, logsumexp, max, min or argmax)", cli.ErrUsage, name)
}
