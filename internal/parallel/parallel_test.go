package parallel

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	for _, cfg := range []Config{
		DefaultConfig(1),
		{Enabled: true, NumWorkers: 4, MinChunkSize: 3},
		{Enabled: false},
	} {
		var counter int64
		seen := make([]bool, 1000)
		For(len(seen), func(i int) {
			atomic.AddInt64(&counter, 1)
			seen[i] = true
		}, cfg)
		assert.Equal(t, int64(len(seen)), counter)
		assert.NotContains(t, seen, false)
	}
}

func TestForEmpty(t *testing.T) {
	called := false
	For(0, func(int) { called = true }, DefaultConfig(1))
	assert.False(t, called)
}

func TestMap(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}
	squares, err := Map(10, func(i int) (int, error) { return i * i, nil }, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 9, 16, 25, 36, 49, 64, 81}, squares)

	errBad := errors.New("bad")
	_, err = Map(10, func(i int) (int, error) {
		if i == 3 || i == 7 {
			return 0, fmt.Errorf("item %d: %w", i, errBad)
		}
		return i, nil
	}, cfg)
	require.ErrorIs(t, err, errBad)
	assert.Equal(t, "item 3: bad", err.Error())
}
