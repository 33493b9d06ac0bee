// Package fsa defines the automaton arc record and its text format.
package fsa

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"

	"github.com/born-ml/k2/internal/array"
)

// Arc is one transition of an automaton.
//
// An Arc occupies four consecutive 32-bit slots. Viewed as int32 the fourth
// slot holds the bit pattern of Score; it must never be treated as an integer.
type Arc struct {
	SrcState  int32
	DestState int32
	Label     int32
	Score     float32
}

// ArcFields is the number of 32-bit slots per Arc.
const ArcFields = 4

var _ [ArcFields * 4]struct{} = [unsafe.Sizeof(Arc{})]struct{}{}

// String formats the arc as "src dest label score", e.g. "0 1 2 100.1".
func (a Arc) String() string {
	return fmt.Sprintf("%d %d %d %s", a.SrcState, a.DestState, a.Label,
		strconv.FormatFloat(float64(a.Score), 'g', -1, 32))
}

// FloatAsInt returns the bit pattern of f as an int32.
func FloatAsInt(f float32) int32 {
	return int32(math.Float32bits(f)) //nolint:gosec // G115: bit reinterpretation
}

// IntAsFloat returns the float32 whose bit pattern is i.
func IntAsFloat(i int32) float32 {
	return math.Float32frombits(uint32(i)) //nolint:gosec // G115: bit reinterpretation
}

// Fsa is an acceptor in text form: its arcs plus the final state.
// Arcs entering the final state carry label -1.
type Fsa struct {
	Arcs       []Arc
	FinalState int32
}

// Parse reads the k2 text format: one arc per line as
// "src dest label [score]", followed by a line holding only the final state.
//
// Example:
//
//	0 1 0 0.1
//	1 2 -1 0.5
//	2
func Parse(s string) (*Fsa, error) {
	f := &Fsa{FinalState: -1}
	sc := bufio.NewScanner(strings.NewReader(s))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if f.FinalState >= 0 {
			return nil, fmt.Errorf("line %d: unexpected content after final state", lineNo)
		}
		switch len(fields) {
		case 1:
			st, err := parseInt32(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: final state: %w", lineNo, err)
			}
			f.FinalState = st
		case 3, 4:
			arc, err := parseArc(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			f.Arcs = append(f.Arcs, arc)
		default:
			return nil, fmt.Errorf("line %d: expected 1, 3 or 4 fields, got %d", lineNo, len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if f.FinalState < 0 {
		return nil, fmt.Errorf("missing final state")
	}
	for i, a := range f.Arcs {
		if a.SrcState < 0 || a.DestState < 0 || a.SrcState > f.FinalState || a.DestState > f.FinalState {
			return nil, fmt.Errorf("arc %d (%s): state out of range [0, %d]", i, a, f.FinalState)
		}
		if (a.DestState == f.FinalState) != (a.Label == -1) {
			return nil, fmt.Errorf("arc %d (%s): label -1 must be used exactly on arcs entering the final state", i, a)
		}
	}
	return f, nil
}

func parseArc(fields []string) (Arc, error) {
	var a Arc
	var err error
	if a.SrcState, err = parseInt32(fields[0]); err != nil {
		return a, fmt.Errorf("source state: %w", err)
	}
	if a.DestState, err = parseInt32(fields[1]); err != nil {
		return a, fmt.Errorf("destination state: %w", err)
	}
	if a.Label, err = parseInt32(fields[2]); err != nil {
		return a, fmt.Errorf("label: %w", err)
	}
	if len(fields) == 4 {
		score, err := strconv.ParseFloat(fields[3], 32)
		if err != nil {
			return a, fmt.Errorf("score: %w", err)
		}
		a.Score = float32(score)
	}
	return a, nil
}

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	return int32(n), err
}

// String formats the automaton in the text format accepted by Parse.
func (f *Fsa) String() string {
	var b strings.Builder
	for _, a := range f.Arcs {
		b.WriteString(a.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d\n", f.FinalState)
	return b.String()
}

// ArcArray copies the arcs into an array on ctx.
func (f *Fsa) ArcArray(ctx array.Context) array.Array1[Arc] {
	return array.FromSlice(ctx, f.Arcs)
}
