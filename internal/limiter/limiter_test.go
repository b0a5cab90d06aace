package limiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_QuotaEnforced(t *testing.T) {
	l := New(100, time.Hour)
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("client-a", 5))
	}
	assert.False(t, l.Allow("client-a", 5))
	// Other clients are unaffected.
	assert.True(t, l.Allow("client-b", 5))
}

func TestAllow_WindowSlides(t *testing.T) {
	l := New(100, time.Hour)
	current := time.Now()
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("client", 2))
	assert.True(t, l.Allow("client", 2))
	assert.False(t, l.Allow("client", 2))

	// 61 seconds later the old stamps fall out of the window.
	current = current.Add(61 * time.Second)
	assert.True(t, l.Allow("client", 2))
}

func TestAllow_ZeroDisables(t *testing.T) {
	l := New(100, time.Hour)
	for i := 0; i < 1000; i++ {
		assert.True(t, l.Allow("client", 0))
	}
}

func TestAllow_BoundedClients(t *testing.T) {
	l := New(2, time.Hour)
	l.Allow("a", 10)
	l.Allow("b", 10)
	l.Allow("c", 10)
	assert.LessOrEqual(t, l.Tracked(), 2)
}

func TestAllow_Concurrent(t *testing.T) {
	l := New(100, time.Hour)
	var wg sync.WaitGroup
	allowed := make([]int, 10)
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if l.Allow("shared", 50) {
					allowed[g]++
				}
			}
		}(g)
	}
	wg.Wait()

	total := 0
	for _, n := range allowed {
		total += n
	}
	assert.Equal(t, 50, total)
}
