package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		{
			Name:        "config",
			Description: "YAML file with defaults for dtype, device, compact, color, verbose and encoding",
			Type:        cli.NamedFuncOpt(cfg.configOpt, "(filepath)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "k2").
		WithSynopsis("k2 [opts] command [opts]").
		WithDescription("k2 is a tool for working with ragged tensors.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return k2Main(cfg, cc, args)
		}).
		WithSubs(
			ShowCommand(cfg),
			ReduceCommand(cfg),
			PadCommand(cfg),
			SortCommand(cfg),
			UniqueCommand(cfg),
			FilterCommand(cfg),
			TokenizeCommand(cfg),
			ArcsCommand(cfg),
			SaveCommand(cfg),
			LoadCommand(cfg),
			VersionCommand(cfg))
}

func ShowCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ShowConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Show, "show").
		WithAliases("s").
		WithSynopsis("show [opts] [ragged...]").
		WithDescription("parse ragged tensors and print them").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return show(cfg, cc, args)
		})
}

func ReduceCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ReduceConfig{MainConfig: mainCfg, Op: "sum"}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name:        "initial",
		Description: "value of empty sublists (default the identity of op)",
		Type:        cli.NamedFuncOpt(cfg.initialOpt, "(number)"),
	})
	return cli.NewCommandAt(&cfg.Reduce, "reduce").
		WithAliases("r").
		WithSynopsis("reduce [-op op] [-initial x] [ragged...]").
		WithDescription("reduce the last axis of ragged tensors").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return reduce(cfg, cc, args)
		})
}

func PadCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PadConfig{MainConfig: mainCfg, Mode: "constant"}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name:        "value",
		Description: "padding value in constant mode (default 0)",
		Type:        cli.NamedFuncOpt(cfg.valueOpt, "(number)"),
	})
	return cli.NewCommandAt(&cfg.Pad, "pad").
		WithAliases("p").
		WithSynopsis("pad [-mode mode] [-value x] [ragged...]").
		WithDescription("pad 2-axis ragged tensors to a matrix").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return pad(cfg, cc, args)
		})
}

func SortCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SortConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Sort, "sort").
		WithSynopsis("sort [-d] [-order] [ragged...]").
		WithDescription("sort the sublists of the last axis").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return sortCmd(cfg, cc, args)
		})
}

func UniqueCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &UniqueConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Unique, "unique").
		WithAliases("u").
		WithSynopsis("unique [-c] [-order] [ragged...]").
		WithDescription("sort and deduplicate the sublists of int32 ragged tensors").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return unique(cfg, cc, args)
		})
}

func FilterCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FilterConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Filter, "filter").
		WithAliases("f").
		WithSynopsis("filter -where <expr> [ragged...]").
		WithDescription("keep the values x for which expr is true, e.g. -where 'x > 0 && x != 3'").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return filter(cfg, cc, args)
		})
}

func TokenizeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &TokenizeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Tokenize, "tokenize").
		WithAliases("t", "tok").
		WithSynopsis("tokenize [opts] [texts...]").
		WithDescription("encode texts into a ragged tensor of token ids, one sublist per text").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return tokenize(cfg, cc, args)
		})
}

func ArcsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ArcsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Arcs, "arcs").
		WithAliases("a").
		WithSynopsis("arcs [-raw] [files]").
		WithDescription("read automata in text form and print their arcs as an N x 4 int32 tensor").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return arcs(cfg, cc, args)
		})
}

func SaveCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SaveConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Save, "save").
		WithSynopsis("save name=ragged [name=ragged...]").
		WithDescription("write named ragged tensors as a SafeTensors file, usually with -o").
		WithRun(func(cc *cli.Context, args []string) error {
			return save(cfg, cc, args)
		})
}

func LoadCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &LoadConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Load, "load").
		WithSynopsis("load files").
		WithDescription("print the ragged tensors of SafeTensors files written by save").
		WithRun(func(cc *cli.Context, args []string) error {
			return load(cfg, cc, args)
		})
}

func VersionCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &VersionConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Version, "version").
		WithSynopsis("version").
		WithDescription("print the version").
		WithRun(func(cc *cli.Context, args []string) error {
			return versionCmd(cfg, cc, args)
		})
}
