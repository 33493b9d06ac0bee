// Package serialization reads and writes named tensors in the SafeTensors
// format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON, padded with spaces to a multiple of 8 bytes]
//	[tensor data: raw little-endian bytes]
//
// The header maps each tensor name to its dtype, shape and byte range in the
// data section. The optional "__metadata__" entry holds string pairs; Write
// stores a SHA-256 checksum of the data section there and Read verifies it.
package serialization
