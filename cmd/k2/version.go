package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

const version = "v0.1.0-dev"

func versionCmd(cfg *VersionConfig, cc *cli.Context, args []string) error {
	if _, err := parseArgs(cfg.Version, cc, args); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cc.Out, "k2 %s\n", version)
	return err
}
