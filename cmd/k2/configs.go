package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/born-ml/k2/ragged"
	"github.com/born-ml/k2/tensor"

	"github.com/scott-cotton/cli"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	DType   string `cli:"name=dtype desc='element type: int32, float32 or float64 (default inferred)'"`
	Device  string `cli:"name=device desc='device to create tensors on: cpu or cuda:N'"`
	Compact bool   `cli:"name=compact desc='print each ragged tensor on one line'"`
	Color   bool   `cli:"name=color desc='print with color'"`
	V       bool   `cli:"name=v desc='debug logging'"`

	// File holds the values loaded by -config.
	File     *FileConfig
	colorSet bool

	Out      string
	CloseOut func() error

	Main *cli.Command
}

// FileConfig is the YAML configuration file. Flags given on the command line
// take precedence over its values.
type FileConfig struct {
	DType    string `yaml:"dtype"`
	Device   string `yaml:"device"`
	Compact  *bool  `yaml:"compact"`
	Color    *bool  `yaml:"color"`
	Verbose  *bool  `yaml:"verbose"`
	Encoding string `yaml:"encoding"`
}

func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, err
	}
	fc := &FileConfig{}
	if err := yaml.UnmarshalWithOptions(data, fc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return fc, nil
}

func (cfg *MainConfig) configOpt(_ *cli.Context, a string) (any, error) {
	fc, err := loadFileConfig(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	cfg.File = fc
	return a, nil
}

// applyFile copies file values into the fields whose flag was not given.
func (cfg *MainConfig) applyFile(isSet func(name string) bool) {
	fc := cfg.File
	if fc == nil {
		return
	}
	if fc.DType != "" && !isSet("dtype") {
		cfg.DType = fc.DType
	}
	if fc.Device != "" && !isSet("device") {
		cfg.Device = fc.Device
	}
	if fc.Compact != nil && !isSet("compact") {
		cfg.Compact = *fc.Compact
	}
	if fc.Color != nil && !isSet("color") {
		cfg.Color = *fc.Color
		cfg.colorSet = true
	}
	if fc.Verbose != nil && !isSet("v") {
		cfg.V = *fc.Verbose
	}
}

// optSet reports whether the option name of cmd was given.
func optSet(cmd *cli.Command, name string) bool {
	if cmd == nil {
		return false
	}
	for _, opt := range cmd.Opts {
		if opt.Name == name {
			return opt.Value != nil
		}
	}
	return false
}

func (cfg *MainConfig) raggedOpts() ([]ragged.Option, error) {
	var opts []ragged.Option
	if cfg.DType != "" {
		dtype, ok := tensor.ParseDataType(cfg.DType)
		if !ok {
			return nil, fmt.Errorf("%w: unknown dtype %q", cli.ErrUsage, cfg.DType)
		}
		opts = append(opts, ragged.WithDtype(dtype))
	}
	if cfg.Device != "" {
		place, err := tensor.ParsePlace(cfg.Device)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		opts = append(opts, ragged.WithDevice(place))
	}
	return opts, nil
}

// colors returns nil unless output to w should be colored: -color, or a
// terminal when color was not configured either way.
func (cfg *MainConfig) colors(w io.Writer) *Colors {
	if cfg.Color {
		return NewColors()
	}
	if cfg.colorSet {
		return nil
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return NewColors()
	}
	return nil
}

type ShowConfig struct {
	*MainConfig
	Info bool `cli:"name=i aliases=info desc='print axes, sizes, dtype and device'"`

	Show *cli.Command
}

type ReduceConfig struct {
	*MainConfig
	Op string `cli:"name=op desc='sum, logsumexp, max, min or argmax'"`

	Initial    float64
	InitialSet bool

	Reduce *cli.Command
}

func (cfg *ReduceConfig) initialOpt(_ *cli.Context, a string) (any, error) {
	v, err := parseFloat(a)
	if err != nil {
		return nil, err
	}
	cfg.Initial = v
	cfg.InitialSet = true
	return v, nil
}

// initial is the value given by -initial, or the identity of the reduction.
func (cfg *ReduceConfig) initial() float64 {
	if cfg.InitialSet {
		return cfg.Initial
	}
	switch cfg.Op {
	case "sum":
		return 0
	case "min":
		return math.Inf(1)
	default:
		return math.Inf(-1)
	}
}

type PadConfig struct {
	*MainConfig
	Mode string `cli:"name=mode desc='constant or replicate'"`

	Value float64

	Pad *cli.Command
}

func (cfg *PadConfig) valueOpt(_ *cli.Context, a string) (any, error) {
	v, err := parseFloat(a)
	if err != nil {
		return nil, err
	}
	cfg.Value = v
	return v, nil
}

type SortConfig struct {
	*MainConfig
	Descending bool `cli:"name=d aliases=descending desc='sort in descending order'"`
	Order      bool `cli:"name=order desc='also print the new to old index map'"`

	Sort *cli.Command
}

type UniqueConfig struct {
	*MainConfig
	Counts bool `cli:"name=c aliases=counts desc='also print the number of repeats'"`
	Order  bool `cli:"name=order desc='also print the new to old index map'"`

	Unique *cli.Command
}

type FilterConfig struct {
	*MainConfig
	Where string `cli:"name=where desc='expression in x, the values to keep'"`

	Filter *cli.Command
}

type TokenizeConfig struct {
	*MainConfig
	Encoding string `cli:"name=encoding aliases=e desc='tiktoken encoding (default cl100k_base)'"`
	Model    string `cli:"name=model desc='tiktoken encoding of a model such as gpt-4'"`
	BPE      string `cli:"name=bpe desc='tokenizer.json file or directory'"`
	Decode   bool   `cli:"name=decode aliases=d desc='decode ragged tensors of ids'"`

	Tokenize *cli.Command
}

// encoding is the -encoding flag, or the configured encoding.
func (cfg *TokenizeConfig) encoding() string {
	if cfg.Encoding != "" {
		return cfg.Encoding
	}
	if cfg.File != nil && cfg.File.Encoding != "" {
		return cfg.File.Encoding
	}
	return "cl100k_base"
}

type ArcsConfig struct {
	*MainConfig
	Raw bool `cli:"name=raw desc='print scores as int32 bit patterns'"`

	Arcs *cli.Command
}

type SaveConfig struct {
	*MainConfig

	Save *cli.Command
}

type LoadConfig struct {
	*MainConfig

	Load *cli.Command
}

type VersionConfig struct {
	*MainConfig

	Version *cli.Command
}

func parseFloat(a string) (float64, error) {
	v, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return v, nil
}
