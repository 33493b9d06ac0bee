package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/k2/tokenizer"

	"github.com/scott-cotton/cli"
)

func tokenize(cfg *TokenizeConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Tokenize, cc, args)
	if err != nil {
		return err
	}
	tok, err := cfg.tokenizer()
	if err != nil {
		return err
	}
	return tokenizeArgs(cfg, tok, cc.Out, cc.In, args)
}

func (cfg *TokenizeConfig) tokenizer() (tokenizer.Tokenizer, error) {
	switch {
	case cfg.BPE != "" && cfg.Model != "":
		return nil, fmt.Errorf("%w: -bpe and -model are exclusive", cli.ErrUsage)
	case cfg.BPE != "":
		return tokenizer.LoadBPE(cfg.BPE)
	case cfg.Model != "":
		return tokenizer.NewTikTokenForModel(cfg.Model)
	}
	return tokenizer.NewTikToken(cfg.encoding())
}

// tokenizeArgs encodes the texts of args, or the lines of in, as one ragged
// tensor. With -decode the inputs are ragged tensors of ids instead and one
// text is printed per line.
func tokenizeArgs(cfg *TokenizeConfig, tok tokenizer.Tokenizer, w io.Writer, in io.Reader, args []string) error {
	theLog.Debug("tokenizer", "name", tok.Name(), "vocab", tok.VocabSize())
	if cfg.Decode {
		rs, err := readRagged(cfg.MainConfig, in, args)
		if err != nil {
			return err
		}
		for _, r := range rs {
			texts, err := tokenizer.DecodeBatch(tok, r)
			if err != nil {
				return err
			}
			for _, text := range texts {
				if _, err := fmt.Fprintln(w, text); err != nil {
					return err
				}
			}
		}
		return nil
	}
	texts, err := readTexts(in, args)
	if err != nil {
		return err
	}
	ids, err := tokenizer.EncodeBatch(tok, texts)
	if err != nil {
		return err
	}
	return writeRagged(cfg.MainConfig, w, ids)
}

// readTexts returns args, or the non-empty lines of in when args is empty
// or "-".
func readTexts(in io.Reader, args []string) ([]string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return args, nil
	}
	d, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("error reading stdin: %w", err)
	}
	var texts []string
	for _, line := range strings.Split(string(d), "\n") {
		if strings.TrimSpace(line) != "" {
			texts = append(texts, line)
		}
	}
	return texts, nil
}
