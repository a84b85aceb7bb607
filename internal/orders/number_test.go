package orders

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNumberGeneratorFormat(t *testing.T) {
	g := NewNumberGenerator("")
	g.now = func() time.Time { return time.UnixMilli(1700000000123) }

	n := g.Next()
	assert.Regexp(t, regexp.MustCompile(`^MS-1700000000123-001[0-9A-Z]{4}$`), n)

	n = NewNumberGenerator("ACME").Next()
	assert.Regexp(t, regexp.MustCompile(`^ACME-\d+-[0-9A-Z]{7}$`), n)
}

func TestNumberGeneratorConcurrentUnique(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := NewNumberGenerator("MS")
	frozen := time.Now()
	g.now = func() time.Time { return frozen }

	const workers, perWorker = 20, 500
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, g.Next())
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}
