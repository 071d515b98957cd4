package idgen

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Generator produces incident ids. Implementations must return ids that sort
// roughly by creation time so recency queries can order on them.
type Generator interface {
	NewID() string
}

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Incident ids look like EMG-1700000000000-17-k3f9x2. The millisecond
// timestamp plus a process-local counter keeps them monotonic-enough; the
// random suffix guards against collisions across restarts.
type incidentGenerator struct {
	seq uint64

	mu  sync.Mutex
	rnd *rand.Rand
}

func New() Generator {
	return &incidentGenerator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *incidentGenerator) NewID() string {
	seq := atomic.AddUint64(&g.seq, 1)
	return fmt.Sprintf("EMG-%d-%d-%s", time.Now().UnixMilli(), seq, g.suffix(6))
}

func (g *incidentGenerator) suffix(n int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.rnd.Intn(len(alphabet))]
	}
	return string(b)
}

// Sequential yields predictable ids for tests.
type Sequential struct {
	Prefix string
	n      uint64
}

func (s *Sequential) NewID() string {
	n := atomic.AddUint64(&s.n, 1)
	prefix := s.Prefix
	if prefix == "" {
		prefix = "test"
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}
