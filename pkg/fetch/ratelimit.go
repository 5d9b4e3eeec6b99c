package fetch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Pacer enforces the politeness delay between requests to the target host.
// Every fetch attempt is followed by a pause of floor plus a random share of spread.
// Wait additionally caps fetch starts at one per floor across all callers.
type Pacer struct {
	floor   time.Duration
	spread  time.Duration
	limiter *rate.Limiter // nil when floor is 0
	rng     *rand.Rand
	rngMu   sync.Mutex // Protects rng and total
	total   time.Duration
	log     *logrus.Entry
}

// NewPacer creates a Pacer. Negative values are treated as zero.
func NewPacer(floor, spread time.Duration, log *logrus.Entry) *Pacer {
	if floor < 0 {
		floor = 0
	}
	if spread < 0 {
		spread = 0
	}
	p := &Pacer{
		floor:  floor,
		spread: spread,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:    log,
	}
	if floor > 0 {
		p.limiter = rate.NewLimiter(rate.Every(floor), 1)
	}
	return p
}

// Wait blocks until another fetch may start. With a single caller that always
// Pauses after fetching it returns immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Delay picks the next pause in [floor, floor+spread)
func (p *Pacer) Delay() time.Duration {
	if p.spread <= 0 {
		return p.floor
	}
	p.rngMu.Lock()
	jitter := time.Duration(p.rng.Int63n(int64(p.spread)))
	p.rngMu.Unlock()
	return p.floor + jitter
}

// Pause sleeps for the next delay, returning early with the context error if
// ctx is cancelled. It reports the time actually waited.
func (p *Pacer) Pause(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d := p.Delay()
	if d <= 0 {
		return 0, nil
	}

	p.log.WithField("sleep", d).Debug("Pacing before next request")
	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		p.record(d)
		return d, nil
	case <-ctx.Done():
		waited := time.Since(start)
		p.record(waited)
		return waited, ctx.Err()
	}
}

// Total returns the accumulated pause time
func (p *Pacer) Total() time.Duration {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.total
}

func (p *Pacer) record(d time.Duration) {
	p.rngMu.Lock()
	p.total += d
	p.rngMu.Unlock()
}
