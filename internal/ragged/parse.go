package ragged

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/born-ml/k2/internal/array"
)

// ParseOptions are read from the RaggedTensor(...) form of the text.
type ParseOptions struct {
	Dtype  string // empty if not given
	Device string // empty if not given
}

// Parse reads a ragged array from text such as
//
//	[ [[1 2] [3] []]   [[1] [10] [20 30]] ]
//
// Numbers may be separated by spaces or commas. Several top-level lists are
// read as the sublists of an implicit outer list, so the example above may
// also be written without its outermost brackets. The output of ToString,
// "RaggedTensor([...], device='cpu', dtype=int32)", is accepted too; its
// options are returned.
//
// The dtype is int32 if every number is an int32 and float32 otherwise,
// unless dtype is valid.
func Parse(ctx array.Context, s string, dtype *array.Dtype) (Any, ParseOptions, error) {
	body, opts, err := unwrap(s)
	if err != nil {
		return Any{}, opts, err
	}
	root, err := parseTree(body)
	if err != nil {
		return Any{}, opts, err
	}
	d := root.inferDtype()
	if dtype != nil {
		d = *dtype
	}
	a, err := root.build(ctx, d)
	return a, opts, err
}

const wrapperPrefix = "RaggedTensor("

// WrapperOptions returns the options given in the RaggedTensor(...) form of
// s, without parsing the values.
func WrapperOptions(s string) (ParseOptions, error) {
	_, opts, err := unwrap(s)
	return opts, err
}

// unwrap strips the RaggedTensor(...) wrapper and returns its options.
func unwrap(s string) (string, ParseOptions, error) {
	var opts ParseOptions
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, wrapperPrefix) {
		return s, opts, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", opts, fmt.Errorf("%w: missing closing parenthesis", ErrParse)
	}
	inner := s[len(wrapperPrefix) : len(s)-1]
	end := strings.LastIndex(inner, "]")
	if end < 0 {
		return "", opts, fmt.Errorf("%w: no list in %q", ErrParse, s)
	}
	for _, kv := range strings.Split(inner[end+1:], ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return "", opts, fmt.Errorf("%w: bad option %q", ErrParse, kv)
		}
		value = strings.Trim(strings.TrimSpace(value), `'"`)
		switch strings.TrimSpace(key) {
		case "dtype":
			// Accept qualified names such as torch.int32.
			if i := strings.LastIndex(value, "."); i >= 0 {
				value = value[i+1:]
			}
			opts.Dtype = value
		case "device":
			opts.Device = value
		default:
			return "", opts, fmt.Errorf("%w: unknown option %q", ErrParse, key)
		}
	}
	return inner[:end+1], opts, nil
}

func parseTree(s string) (*node, error) {
	p := &parser{s: s}
	root := &node{}
	for {
		p.skip()
		if p.eof() {
			break
		}
		if p.s[p.pos] != '[' {
			return nil, p.errorf("expected '['")
		}
		n, err := p.list()
		if err != nil {
			return nil, err
		}
		root.kids = append(root.kids, n)
	}
	switch len(root.kids) {
	case 0:
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	case 1:
		return root.kids[0], nil
	default:
		return root, nil
	}
}

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

// skip advances past whitespace and commas.
func (p *parser) skip() {
	for !p.eof() && (p.s[p.pos] == ',' || unicode.IsSpace(rune(p.s[p.pos]))) {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrParse, fmt.Sprintf(format, args...), p.pos)
}

// list parses a bracketed list starting at '['.
func (p *parser) list() (*node, error) {
	p.pos++ // '['
	n := &node{}
	for {
		p.skip()
		if p.eof() {
			return nil, p.errorf("unterminated list")
		}
		switch c := p.s[p.pos]; {
		case c == ']':
			p.pos++
			return n, nil
		case c == '[':
			kid, err := p.list()
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, kid)
		default:
			lit, err := p.number()
			if err != nil {
				return nil, err
			}
			n.vals = append(n.vals, lit)
		}
		if len(n.kids) > 0 && len(n.vals) > 0 {
			return nil, p.errorf("list mixes numbers and lists")
		}
	}
}

func (p *parser) number() (literal, error) {
	start := p.pos
	for !p.eof() {
		c := p.s[p.pos]
		if c == ',' || c == '[' || c == ']' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	text := p.s[start:p.pos]
	lit := literal{text: text}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		lit.i, lit.f, lit.isInt = i, float64(i), true
		return lit, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return lit, fmt.Errorf("%w: invalid number %q at offset %d", ErrParse, text, start)
	}
	lit.f = f
	return lit, nil
}
