package tokenizer

import (
	"fmt"

	"github.com/born-ml/k2/internal/parallel"
)

// Tokenizer converts between text and token ids. Implementations must be
// safe for concurrent use.
type Tokenizer interface {
	// Encode converts text to token ids.
	Encode(text string) ([]int32, error)

	// Decode converts token ids back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the number of regular tokens.
	VocabSize() int

	// Name identifies the encoding, e.g. "cl100k_base".
	Name() string
}

// EncodeBatch encodes every text and returns the ids of text i as
// ids[rowSplits[i]:rowSplits[i+1]]. Texts are encoded concurrently.
func EncodeBatch(tok Tokenizer, texts []string) (rowSplits, ids []int32, err error) {
	encoded, err := parallel.Map(len(texts), func(i int) ([]int32, error) {
		tokens, err := tok.Encode(texts[i])
		if err != nil {
			return nil, fmt.Errorf("encoding text %d: %w", i, err)
		}
		return tokens, nil
	}, parallel.DefaultConfig(4))
	if err != nil {
		return nil, nil, err
	}
	rowSplits = make([]int32, 1, len(texts)+1)
	ids = []int32{}
	for _, tokens := range encoded {
		ids = append(ids, tokens...)
		rowSplits = append(rowSplits, int32(len(ids))) //nolint:gosec // G115: batch sizes fit in int32
	}
	return rowSplits, ids, nil
}

// DecodeBatch is the inverse of EncodeBatch.
func DecodeBatch(tok Tokenizer, rowSplits, ids []int32) ([]string, error) {
	if len(rowSplits) == 0 {
		return nil, fmt.Errorf("row splits must not be empty")
	}
	texts := make([]string, len(rowSplits)-1)
	for i := range texts {
		text, err := tok.Decode(ids[rowSplits[i]:rowSplits[i+1]])
		if err != nil {
			return nil, fmt.Errorf("decoding text %d: %w", i, err)
		}
		texts[i] = text
	}
	return texts, nil
}
