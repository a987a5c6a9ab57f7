package main

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"

	"github.com/craigjacobson/priorityq"
)

// clamp restricts v to [lo, hi], inclusive. Used to keep drawn and
// re-prioritized priorities inside the valid [0, 127] range.
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// result summarizes one completed workload run.
type result struct {
	Enqueued       int           `json:"enqueued"`
	Dequeued       int           `json:"dequeued"`
	Reprioritized  int           `json:"reprioritized"`
	MaxQueueLen    int           `json:"max_queue_len"`
	Elapsed        time.Duration `json:"elapsed"`
	EnqueuesPerSec float64       `json:"enqueues_per_sec"`
}

// payload is the bench item carried through the queue (NewQueue's Item is
// generic over this type). seq records the item's enqueue position; the
// run does not read it back.
type payload struct {
	seq int
}

func runWorkload(log *zap.Logger, cfg *Config) result {
	rng := rand.New(rand.NewSource(cfg.Seed))
	q := priorityq.NewQueue[payload]()

	var live []*priorityq.Item[payload]
	var reprioritized int
	maxLen := 0

	start := time.Now()
	for i := 0; i < cfg.Items; i++ {
		it := priorityq.NewItem[payload]()
		p := randomPriority(rng, cfg)
		it.Set(payload{seq: i}, p)
		q.Enqueue(it)
		live = append(live, it)

		if cfg.ReprioritizeEvery > 0 && i > 0 && i%cfg.ReprioritizeEvery == 0 {
			victim := live[rng.Intn(len(live))]
			if victim.Active() {
				bumped := priorityq.Priority(clamp(int(victim.Value())-1, 0, 127))
				victim.Set(victim.Payload(), bumped)
				q.Enqueue(victim)
				reprioritized++
			}
		}

		if l := q.Len(); l > maxLen {
			maxLen = l
		}

		// Periodically drain a portion of the queue, like a consumer that
		// keeps pace with production rather than building unbounded backlog.
		if i%8 == 7 {
			for n := 0; n < 4; n++ {
				if q.Dequeue() == nil {
					break
				}
			}
		}
	}

	dequeued := 0
	for q.Dequeue() != nil {
		dequeued++
	}
	elapsed := time.Since(start)

	log.Info("workload complete",
		zap.Int("enqueued", cfg.Items),
		zap.Int("reprioritized", reprioritized),
		zap.Int("max_queue_len", maxLen),
		zap.Duration("elapsed", elapsed),
	)

	return result{
		Enqueued:       cfg.Items,
		Dequeued:       dequeued,
		Reprioritized:  reprioritized,
		MaxQueueLen:    maxLen,
		Elapsed:        elapsed,
		EnqueuesPerSec: float64(cfg.Items) / elapsed.Seconds(),
	}
}

func randomPriority(rng *rand.Rand, cfg *Config) priorityq.Priority {
	if cfg.UrgentPercent > 0 && rng.Intn(100) < cfg.UrgentPercent {
		return priorityq.Urgent
	}
	return priorityq.Priority(clamp(rng.Intn(cfg.PriorityMax+1), 0, 127))
}
