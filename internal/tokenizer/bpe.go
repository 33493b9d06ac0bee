package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// spaceMarker starts every word but the first, as in GPT-2 style vocabularies.
const spaceMarker = "Ġ"

// Pair is a BPE merge rule: two adjacent symbols that become one.
type Pair struct {
	First  string
	Second string
}

// BPE implements word-level byte-pair encoding.
//
// Text is split at white space; every word but the first starts with the
// space marker "Ġ". Each word is split into characters, and adjacent symbols
// are merged by the lowest ranked rule until no rule applies. Symbols
// outside the vocabulary become the unknown token, or are dropped if there
// is none.
type BPE struct {
	name    string
	vocab   map[string]int32
	reverse map[int32]string
	ranks   map[Pair]int
	unk     int32
}

// NewBPE creates a tokenizer from a vocabulary and merges in priority order.
func NewBPE(name string, vocab map[string]int32, merges []Pair) *BPE {
	b := &BPE{
		name:    name,
		vocab:   vocab,
		reverse: make(map[int32]string, len(vocab)),
		ranks:   make(map[Pair]int, len(merges)),
		unk:     -1,
	}
	for token, id := range vocab {
		b.reverse[id] = token
	}
	for i, m := range merges {
		if _, ok := b.ranks[m]; !ok {
			b.ranks[m] = i
		}
	}
	return b
}

// SetUnknown sets the id used for symbols outside the vocabulary, or -1.
func (b *BPE) SetUnknown(id int32) {
	b.unk = id
}

// Encode converts text to token ids.
func (b *BPE) Encode(text string) ([]int32, error) {
	ids := []int32{}
	for i, word := range strings.Fields(text) {
		if i > 0 {
			word = spaceMarker + word
		}
		for _, sym := range b.merge(word) {
			if id, ok := b.vocab[sym]; ok {
				ids = append(ids, id)
			} else if b.unk >= 0 {
				ids = append(ids, b.unk)
			}
		}
	}
	return ids, nil
}

// merge applies the merge rules to the characters of word.
func (b *BPE) merge(word string) []string {
	var syms []string
	for _, r := range word {
		syms = append(syms, string(r))
	}
	for len(syms) > 1 {
		best, bestRank := -1, len(b.ranks)
		for i := 0; i+1 < len(syms); i++ {
			if rank, ok := b.ranks[Pair{syms[i], syms[i+1]}]; ok && rank < bestRank {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			break
		}
		syms[best] += syms[best+1]
		syms = append(syms[:best+1], syms[best+2:]...)
	}
	return syms
}

// Decode joins the symbols of tokens, turning space markers back into
// spaces. Unknown ids decode to U+FFFD.
func (b *BPE) Decode(tokens []int32) (string, error) {
	var sb strings.Builder
	for _, id := range tokens {
		sym, ok := b.reverse[id]
		if !ok {
			sym = "�"
		}
		sb.WriteString(sym)
	}
	return strings.ReplaceAll(sb.String(), spaceMarker, " "), nil
}

// VocabSize returns the number of tokens in the vocabulary.
func (b *BPE) VocabSize() int {
	return len(b.vocab)
}

// Name returns the name given at creation.
func (b *BPE) Name() string {
	return b.name
}

// hfTokenizer is the part of a HuggingFace tokenizer.json that BPE reads.
type hfTokenizer struct {
	Model struct {
		Type     string            `json:"type"`
		Vocab    map[string]int32  `json:"vocab"`
		Merges   []json.RawMessage `json:"merges"`
		UnkToken *string           `json:"unk_token"`
	} `json:"model"`
	AddedTokens []struct {
		ID      int32  `json:"id"`
		Content string `json:"content"`
	} `json:"added_tokens"`
}

// LoadBPE loads a BPE tokenizer from a HuggingFace tokenizer.json file, or
// from a directory containing one. Merges may be "a b" strings or
// ["a", "b"] pairs.
func LoadBPE(path string) (*BPE, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "tokenizer.json")
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer.json: %w", err)
	}
	var cfg hfTokenizer
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Model.Type != "" && cfg.Model.Type != "BPE" {
		return nil, fmt.Errorf("%s: unsupported tokenizer model %q", path, cfg.Model.Type)
	}

	vocab := cfg.Model.Vocab
	if vocab == nil {
		vocab = make(map[string]int32)
	}
	for _, added := range cfg.AddedTokens {
		vocab[added.Content] = added.ID
	}
	merges := make([]Pair, 0, len(cfg.Model.Merges))
	for i, raw := range cfg.Model.Merges {
		m, err := parseMerge(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: merge %d: %w", path, i, err)
		}
		merges = append(merges, m)
	}

	b := NewBPE(filepath.Base(filepath.Dir(path)), vocab, merges)
	if cfg.Model.UnkToken != nil {
		if id, ok := vocab[*cfg.Model.UnkToken]; ok {
			b.SetUnknown(id)
		}
	}
	return b, nil
}

func parseMerge(raw json.RawMessage) (Pair, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		first, second, ok := strings.Cut(s, " ")
		if !ok {
			return Pair{}, fmt.Errorf("bad merge %q", s)
		}
		return Pair{first, second}, nil
	}
	var p []string
	if err := json.Unmarshal(raw, &p); err != nil || len(p) != 2 {
		return Pair{}, fmt.Errorf("bad merge %s", raw)
	}
	return Pair{p[0], p[1]}, nil
}
