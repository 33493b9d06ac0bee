// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer turns batches of text into ragged tensors of token ids
// and back.
//
// Supported tokenizers:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - BPE: HuggingFace tokenizer.json files with a BPE model
//
// Example usage:
//
//	import "github.com/born-ml/k2/tokenizer"
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// One sublist of ids per text.
//	ids, err := tokenizer.EncodeBatch(tok, []string{"Hello, world!", "ragged"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	texts, err := tokenizer.DecodeBatch(tok, ids)
package tokenizer

import (
	"fmt"

	"github.com/born-ml/k2/internal/tokenizer"
	"github.com/born-ml/k2/ragged"
	"github.com/born-ml/k2/tensor"
)

// Tokenizer converts between text and token ids.
type Tokenizer = tokenizer.Tokenizer

// Pair is a BPE merge rule.
type Pair = tokenizer.Pair

// NewTikToken loads an OpenAI encoding: "cl100k_base" (GPT-4),
// "p50k_base" or "r50k_base" (GPT-3). The encoding is downloaded on first
// use.
func NewTikToken(encodingName string) (Tokenizer, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel loads the encoding of a model such as "gpt-4".
func NewTikTokenForModel(modelName string) (Tokenizer, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// LoadBPE loads a BPE tokenizer from a HuggingFace tokenizer.json file or a
// directory containing one.
func LoadBPE(path string) (Tokenizer, error) {
	return tokenizer.LoadBPE(path)
}

// NewBPE creates a BPE tokenizer from a vocabulary and merges in priority
// order. Symbols outside the vocabulary are dropped.
func NewBPE(name string, vocab map[string]int32, merges []Pair) Tokenizer {
	return tokenizer.NewBPE(name, vocab, merges)
}

// EncodeBatch encodes texts into a 2-axis int32 ragged tensor on the CPU
// whose sublist i holds the ids of texts[i].
func EncodeBatch(tok Tokenizer, texts []string) (*ragged.RaggedAny, error) {
	rowSplits, ids, err := tokenizer.EncodeBatch(tok, texts)
	if err != nil {
		return nil, err
	}
	splits, err := tensor.FromSlice(rowSplits, tensor.Shape{len(rowSplits)}, tensor.CPUPlace())
	if err != nil {
		return nil, fmt.Errorf("row splits: %w", err)
	}
	values, err := tensor.FromSlice(ids, tensor.Shape{len(ids)}, tensor.CPUPlace())
	if err != nil {
		return nil, fmt.Errorf("token ids: %w", err)
	}
	shape, err := ragged.NewShape(splits)
	if err != nil {
		return nil, err
	}
	return ragged.New(shape, values)
}

// DecodeBatch decodes every sublist of a 2-axis int32 ragged tensor.
func DecodeBatch(tok Tokenizer, ids *ragged.RaggedAny) ([]string, error) {
	if ids.DType() != tensor.Int32 {
		return nil, fmt.Errorf("%w: token ids must be int32, got %s", ragged.ErrDtype, ids.DType())
	}
	if ids.NumAxes() != 2 {
		return nil, fmt.Errorf("%w: token ids must have 2 axes, got %d", ragged.ErrAxis, ids.NumAxes())
	}
	splits, err := ids.Shape().RowSplits(1)
	if err != nil {
		return nil, err
	}
	return tokenizer.DecodeBatch(tok, tensor.Values[int32](splits), tensor.Values[int32](ids.Data()))
}
