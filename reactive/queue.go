package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Job is a unit of deferred work. Jobs are deduplicated by identity, so
// implementations must be comparable, typically pointers.
type Job interface {
	RunJob()
}

// JobQueue defers jobs to a later flush and coalesces repeated scheduling of the
// same job into a single run per flush.
type JobQueue struct {
	pending  []Job
	queued   mapset.Set[Job]
	flushing bool
	onFlush  func(jobs int)
}

func NewJobQueue() *JobQueue {
	return &JobQueue{
		queued: mapset.NewThreadUnsafeSet[Job](),
	}
}

// Schedule queues j unless it is already pending.
func (q *JobQueue) Schedule(j Job) bool {
	if !q.queued.Add(j) {
		return false
	}
	q.pending = append(q.pending, j)
	return true
}

func (q *JobQueue) Len() int {
	return len(q.pending)
}

// Flush runs pending jobs in the order they were scheduled until the queue is
// empty, including jobs scheduled by the jobs themselves. A job that was already
// run may be scheduled again and runs again in the same flush. Calling Flush
// from inside a job is a no-op.
func (q *JobQueue) Flush() int {
	if q.flushing {
		return 0
	}
	q.flushing = true
	ran := 0
	defer func() {
		q.flushing = false
		if ran > 0 && q.onFlush != nil {
			q.onFlush(ran)
		}
	}()

	for len(q.pending) > 0 {
		j := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.queued.Remove(j)
		j.RunJob()
		ran++
	}
	return ran
}
