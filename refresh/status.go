package refresh

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Status records the outcome of the most recent run of one job.
type Status struct {
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Result     Result    `json:"result"`
	Err        string    `json:"error,omitempty"`
}

// Tracker keeps per-job run statuses with a bounded lifetime. It is handed to
// whoever runs the jobs rather than living in package state, so independent
// systems (or tests) never observe each other's runs.
type Tracker struct {
	c *cache.Cache
}

// NewTracker returns a tracker whose entries expire after a day.
func NewTracker() *Tracker {
	return &Tracker{c: cache.New(24*time.Hour, time.Hour)}
}

// Record stores the outcome of a run, replacing any previous one.
func (t *Tracker) Record(s Status) { t.c.Set(s.Job, s, cache.DefaultExpiration) }

// Last returns the most recent recorded run of a job, if any.
func (t *Tracker) Last(job string) (Status, bool) {
	v, ok := t.c.Get(job)
	if !ok {
		return Status{}, false
	}
	return v.(Status), true
}

// Run executes fn under the tracker, recording start, finish and outcome.
func (t *Tracker) Run(job string, fn func() (Result, error)) (Result, error) {
	s := Status{Job: job, StartedAt: time.Now()}
	res, err := fn()
	s.FinishedAt = time.Now()
	s.Result = res
	if err != nil {
		s.Err = err.Error()
	}
	t.Record(s)
	return res, err
}
