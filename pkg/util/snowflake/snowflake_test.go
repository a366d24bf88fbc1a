package snowflake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator_RejectsOutOfRange(t *testing.T) {
	_, err := NewGenerator(-1)
	assert.Error(t, err)
	_, err = NewGenerator(1024)
	assert.Error(t, err)
}

func TestNextID_UniqueAndIncreasing(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)

	var prev int64
	for i := 0; i < 1000; i++ {
		id := g.NextID()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestNextID_ConcurrentCallersNeverCollide(t *testing.T) {
	g, err := NewGenerator(3)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{})
		wg   sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id := g.NextID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 4000)
}
