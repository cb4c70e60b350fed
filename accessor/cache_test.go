package accessor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetOrCreate(t *testing.T) {
	var c Cache[string, int]

	calls := 0
	v, err := c.GetOrCreate("a", func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	// Second request must not rebuild.
	v, err = c.GetOrCreate("a", func() (int, error) {
		calls++
		return 99, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestCacheErrorNotCached(t *testing.T) {
	var c Cache[string, int]

	boom := errors.New("boom")
	calls := 0
	factory := func() (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	_, err := c.GetOrCreate("a", factory)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	// A failed build is re-attempted on the next call.
	v, err := c.GetOrCreate("a", factory)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestCacheClear(t *testing.T) {
	var c Cache[string, int]

	_, err := c.GetOrCreate("a", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = c.GetOrCreate("b", func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCacheSingleFlight(t *testing.T) {
	const numGoroutines = 32

	var c Cache[string, *int]
	var builds int32
	var wg sync.WaitGroup

	results := make(chan *int, numGoroutines)
	startBarrier := make(chan struct{})

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-startBarrier
			v, err := c.GetOrCreate("key", func() (*int, error) {
				n := int(atomic.AddInt32(&builds, 1))
				return &n, nil
			})
			if err != nil {
				t.Error(err)
				return
			}
			results <- v
		}()
	}

	close(startBarrier)
	wg.Wait()
	close(results)

	// Racing builds are allowed, but exactly one instance is retained and
	// observed by every caller, winners and losers alike.
	var canonical *int
	for v := range results {
		if canonical == nil {
			canonical = v
			continue
		}
		assert.True(t, canonical == v, "every caller must observe the canonical instance")
	}
	assert.Equal(t, 1, c.Len())
}

func TestClearCaches(t *testing.T) {
	ClearCaches()
	bindSettingsStatics(t)

	_, err := GetMember(settingsType, "Volume")
	require.NoError(t, err)
	assert.Equal(t, 1, CacheStats()["members"])

	ClearCaches()
	assert.Equal(t, 0, CacheStats()["members"])
}

func TestCacheStatsNameIndex(t *testing.T) {
	ClearCaches()

	// Name-only method resolution populates the name index.
	_, err := GetMethod(calcType, "AddBase")
	require.NoError(t, err)
	assert.Equal(t, 1, CacheStats()["names"])

	ClearCaches()
	assert.Equal(t, 0, CacheStats()["names"])
}
