package resolve

import (
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/talgya/backstory/internal/entropy"
)

// Pool describes one candidate sequence being drawn from.
type Pool struct {
	ID      string // e.g. "ruler_titles/dwarf"
	Subject string // Whose story is being told; may be empty
	Size    int
}

// Policy chooses an index in [0, pool.Size) for a non-empty pool.
type Policy interface {
	Pick(src entropy.Source, pool Pool) int
}

// Uniform picks every candidate with equal probability.
type Uniform struct{}

func (Uniform) Pick(src entropy.Source, pool Pool) int {
	return src.Intn(pool.Size)
}

// Hashed picks deterministically from the seed, subject and pool, so the same
// subject always gets the same text no matter how many draws came before.
type Hashed struct {
	Seed int64
}

func (h Hashed) Pick(_ entropy.Source, pool Pool) int {
	f := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(h.Seed))
	f.Write(buf[:])
	f.Write([]byte(pool.Subject))
	f.Write([]byte{0})
	f.Write([]byte(pool.ID))
	return int(f.Sum64() % uint64(pool.Size))
}

// DefaultRecencyWindow is how many recent picks per subject and pool are
// penalized when no window is given.
const DefaultRecencyWindow = 4

// DefaultSubjectLimit bounds how many subjects a RecencyAvoiding policy
// remembers before it drops the oldest.
const DefaultSubjectLimit = 4096

// recentWeight is the relative weight of a recently used candidate.
const recentWeight = 0.05

// RecencyAvoiding is a weighted policy that makes candidates used recently for
// the same subject and pool unlikely to repeat. Safe for concurrent use.
type RecencyAvoiding struct {
	window      int
	maxSubjects int

	mu      sync.Mutex
	history map[string]map[string][]int // subject -> pool -> recent picks
	order   []string                    // subjects, oldest first
}

// NewRecencyAvoiding creates the policy. window <= 0 uses DefaultRecencyWindow.
func NewRecencyAvoiding(window int) *RecencyAvoiding {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return &RecencyAvoiding{
		window:      window,
		maxSubjects: DefaultSubjectLimit,
		history:     make(map[string]map[string][]int),
	}
}

// LimitSubjects sets how many subjects are remembered; n <= 0 keeps the
// current limit.
func (p *RecencyAvoiding) LimitSubjects(n int) *RecencyAvoiding {
	if n > 0 {
		p.mu.Lock()
		p.maxSubjects = n
		p.evict()
		p.mu.Unlock()
	}
	return p
}

func (p *RecencyAvoiding) Pick(src entropy.Source, pool Pool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	pools, ok := p.history[pool.Subject]
	if !ok {
		pools = make(map[string][]int)
		p.history[pool.Subject] = pools
		p.order = append(p.order, pool.Subject)
		p.evict()
	}

	recent := pools[pool.ID]
	penalized := make(map[int]bool, len(recent))
	for _, i := range recent {
		if i < pool.Size {
			penalized[i] = true
		}
	}

	weights := make([]float64, pool.Size)
	total := 0.0
	for i := range weights {
		weights[i] = 1
		if penalized[i] {
			weights[i] = recentWeight
		}
		total += weights[i]
	}

	pick := pool.Size - 1
	roll := src.Float64() * total
	for i, w := range weights {
		if roll < w {
			pick = i
			break
		}
		roll -= w
	}

	// Never remember more picks than would penalize the whole pool.
	limit := min(p.window, pool.Size-1)
	recent = append(recent, pick)
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	pools[pool.ID] = recent

	return pick
}

// evict drops the oldest subjects past the limit. Callers hold mu.
func (p *RecencyAvoiding) evict() {
	for len(p.order) > p.maxSubjects {
		delete(p.history, p.order[0])
		p.order = p.order[1:]
	}
}

// Forget drops the history of a subject, for example when it leaves the world.
func (p *RecencyAvoiding) Forget(subject string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.history[subject]; !ok {
		return
	}
	delete(p.history, subject)
	for i, s := range p.order {
		if s == subject {
			p.order = append(p.order[:i:i], p.order[i+1:]...)
			break
		}
	}
}

// Subjects reports how many subjects currently have a recorded history.
func (p *RecencyAvoiding) Subjects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.history)
}
