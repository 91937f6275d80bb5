// Package jobmgr runs named background jobs with cancellation and protects
// against starting the same job twice.
//
//	jm := jobmgr.NewManager(func(msg string) { log.Println("[DEBUG] job", msg) })
//	err := jm.StartAsync(ctx, "slash-sync", func(ctx context.Context) error {
//	    return ledger.Sync(ctx, slash.Global, nil)
//	})
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrRunning is returned when a job with the same name is active.
var ErrRunning = errors.New("job is already running")

// Job is a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
	done   chan struct{}
}

// StatusReporter receives lifecycle events for jobs:
//
//	running:slash-sync
//	error:slash-sync:502 Bad Gateway
//	done:slash-sync
type StatusReporter func(string)

// Manager starts, stops and tracks jobs. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a Manager. The reporter may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartSync runs a job in the current goroutine, still refusing to overlap a
// running job of the same name.
func (m *Manager) StartSync(ctx context.Context, name string, runner func(ctx context.Context) error) error {
	job, jobCtx, err := m.register(ctx, name)
	if err != nil {
		return err
	}
	return m.run(job, jobCtx, runner)
}

// StartAsync runs a job in its own goroutine and returns immediately. The
// job's context is derived from ctx.
func (m *Manager) StartAsync(ctx context.Context, name string, runner func(ctx context.Context) error) error {
	job, jobCtx, err := m.register(ctx, name)
	if err != nil {
		return err
	}
	go func() { _ = m.run(job, jobCtx, runner) }()
	return nil
}

func (m *Manager) register(ctx context.Context, name string) (*Job, context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return nil, nil, fmt.Errorf("%s: %w", name, ErrRunning)
	}
	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{Name: name, Cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = job
	return job, jobCtx, nil
}

func (m *Manager) run(job *Job, ctx context.Context, runner func(ctx context.Context) error) error {
	defer func() {
		job.Cancel()
		m.mu.Lock()
		if m.jobs[job.Name] == job {
			delete(m.jobs, job.Name)
		}
		m.mu.Unlock()
		close(job.done)
	}()

	m.report("running:" + job.Name)
	err := runner(ctx)
	if err != nil {
		m.report("error:" + job.Name + ":" + err.Error())
	} else {
		m.report("done:" + job.Name)
	}
	return err
}

// Stop cancels a running job by name without waiting for it.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}
	job.Cancel()
	return nil
}

// Wait blocks until the named job finishes or ctx is done. A job that is
// not running returns immediately.
func (m *Manager) Wait(ctx context.Context, name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-job.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns the active job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Status returns a human-readable summary of active jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
