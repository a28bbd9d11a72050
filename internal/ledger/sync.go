package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/erazemk/zaloga/internal/telemetry"
)

type jobOp string

const (
	opInsert jobOp = "insert"
	opUpdate jobOp = "update"
)

type job struct {
	op         jobOp
	collection string
	id         string
	fields     Fields
	barrier    chan struct{}
}

func insert(collection string, f Fields) job {
	id, _ := f["id"].(string)
	return job{op: opInsert, collection: collection, id: id, fields: f}
}

func update(collection, id string, f Fields) job {
	return job{op: opUpdate, collection: collection, id: id, fields: f}
}

// queue is an unbounded FIFO of sync jobs. push never blocks, so it is safe
// to call while holding the store's write lock.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []job
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(j job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	telemetry.SyncBacklog.Set(float64(len(q.jobs)))
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// pop waits for the next job. It returns false once the queue is closed
// and empty.
func (q *queue) pop() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.jobs) == 0 {
		return job{}, false
	}
	j := q.jobs[0]
	q.jobs[0] = job{}
	q.jobs = q.jobs[1:]
	telemetry.SyncBacklog.Set(float64(len(q.jobs)))
	return j, true
}

// SyncError describes a mutation that was applied in memory but could not
// be written to the backing store.
type SyncError struct {
	Op         string
	Collection string
	ID         string
	Err        error
}

func (e SyncError) Error() string {
	return fmt.Sprintf("sync %s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
}

func (e SyncError) Unwrap() error {
	return e.Err
}

// run applies queued jobs one at a time until the queue is closed.
func (s *Store) run(ctx context.Context) {
	defer close(s.done)
	for {
		j, ok := s.jobs.pop()
		if !ok {
			return
		}
		if j.barrier != nil {
			close(j.barrier)
			continue
		}
		if err := s.apply(ctx, j); err != nil {
			s.report(SyncError{Op: string(j.op), Collection: j.collection, ID: j.id, Err: err})
		}
	}
}

func (s *Store) apply(ctx context.Context, j job) error {
	switch j.op {
	case opInsert:
		return s.records.Insert(ctx, j.collection, j.fields)
	case opUpdate:
		return s.records.Update(ctx, j.collection, j.id, j.fields)
	}
	return fmt.Errorf("unknown sync op %q", j.op)
}

func (s *Store) report(e SyncError) {
	s.log.Error("ledger sync failed", "op", e.Op, "collection", e.Collection, "id", e.ID, "error", e.Err)
	telemetry.SyncFailures.WithLabelValues(e.Collection).Inc()
	select {
	case s.errs <- e:
	default:
	}
}
