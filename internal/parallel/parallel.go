// Package parallel runs independent loop iterations on several goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on the CPU count. minChunk is the
// smallest number of items worth a goroutine; it is small for expensive items
// such as texts to tokenize.
func DefaultConfig(minChunk int) Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: max(minChunk, 1),
	}
}

// For executes f(i) for i in [0, n), sequentially if parallelism is
// disabled or n is below the minimum chunk size.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers < 2 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Map returns f(0) .. f(n-1). If any call fails, the error of the lowest
// index is returned.
func Map[T any](n int, f func(i int) (T, error), cfg Config) ([]T, error) {
	res := make([]T, n)
	errs := make([]error, n)
	For(n, func(i int) {
		res[i], errs[i] = f(i)
	}, cfg)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}
