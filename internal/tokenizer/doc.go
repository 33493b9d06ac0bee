// Package tokenizer turns text into int32 token ids for ragged batches.
//
// Two implementations are provided:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//     through github.com/pkoukk/tiktoken-go
//   - BPE: a word-level byte-pair encoder loaded from a HuggingFace
//     tokenizer.json, usable offline
//
// EncodeBatch flattens the ids of several texts into row splits and values,
// the layout of a 2-axis ragged tensor.
package tokenizer
