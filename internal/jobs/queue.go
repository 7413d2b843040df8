package jobs

import (
	"slices"

	"github.com/samdwyer/basebuilder/internal/world"
)

// Queue is a first-in first-out list of jobs waiting for a worker. It is not safe for concurrent use.
type Queue struct {
	jobs   []*Job
	nextID int
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{nextID: 1}
}

// Enqueue appends j, assigning an ID if it has none.
func (q *Queue) Enqueue(j *Job) {
	if j.ID == 0 {
		j.ID = q.nextID
		q.nextID++
	}
	q.jobs = append(q.jobs, j)
}

// Dequeue removes and returns the oldest job, or nil if the queue is empty.
func (q *Queue) Dequeue() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	j := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return j
}

// Remove deletes j from the queue and reports whether it was queued.
func (q *Queue) Remove(j *Job) bool {
	i := slices.Index(q.jobs, j)
	if i < 0 {
		return false
	}
	q.jobs = slices.Delete(q.jobs, i, i+1)
	return true
}

// CancelFor removes every queued job that targets f and returns them.
func (q *Queue) CancelFor(f *world.Furniture) []*Job {
	if f == nil {
		return nil
	}
	var cancelled []*Job
	q.jobs = slices.DeleteFunc(q.jobs, func(j *Job) bool {
		if j.Furniture == f {
			cancelled = append(cancelled, j)
			return true
		}
		return false
	})
	return cancelled
}

// At returns the queued job whose footprint covers p, or nil.
func (q *Queue) At(p world.Point) *Job {
	for _, j := range q.jobs {
		if j.Covers(p) {
			return j
		}
	}
	return nil
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Jobs returns the queued jobs, oldest first.
func (q *Queue) Jobs() []*Job {
	return slices.Clone(q.jobs)
}
