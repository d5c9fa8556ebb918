package mac

import "time"

// Job is a one-shot timed callback slot. The owner keeps the Job value;
// scheduling a queued Job again moves it rather than adding a second entry.
type Job struct {
	due    time.Time
	fn     func()
	queued bool
}

// Queued reports whether the job is waiting to run.
func (j *Job) Queued() bool { return j.queued }

// Due is the time the job will run at, valid while Queued.
func (j *Job) Due() time.Time { return j.due }

// jobQueue is ordered by due time; equal times keep insertion order.
type jobQueue []*Job

func (q *jobQueue) insert(j *Job, at time.Time, fn func()) {
	q.remove(j)
	j.due, j.fn, j.queued = at, fn, true
	i := len(*q)
	for i > 0 && (*q)[i-1].due.After(at) {
		i--
	}
	*q = append(*q, nil)
	copy((*q)[i+1:], (*q)[i:])
	(*q)[i] = j
}

func (q *jobQueue) remove(j *Job) {
	if !j.queued {
		return
	}
	for i, x := range *q {
		if x == j {
			*q = append((*q)[:i], (*q)[i+1:]...)
			break
		}
	}
	j.queued = false
}

// popDue removes and returns the first job due at or before now.
func (q *jobQueue) popDue(now time.Time) *Job {
	if len(*q) == 0 || (*q)[0].due.After(now) {
		return nil
	}
	j := (*q)[0]
	*q = (*q)[1:]
	j.queued = false
	return j
}

func (q jobQueue) next() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0].due, true
}
