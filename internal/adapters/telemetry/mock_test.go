package telemetry_test

import (
	"context"
	"sync"
	"time"
)

// recordingRenderer is a thread-safe ports.Renderer that counts calls.
type recordingRenderer struct {
	mu            sync.Mutex
	plans         [][]string
	started       []string
	logs          [][]byte
	completeCalls int
	errs          []error
}

func (r *recordingRenderer) Start(_ context.Context) error { return nil }
func (r *recordingRenderer) Stop() error                   { return nil }
func (r *recordingRenderer) Wait() error                   { return nil }

func (r *recordingRenderer) OnPlanEmit(tasks []string, _ map[string][]string, _ []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = append(r.plans, tasks)
}

func (r *recordingRenderer) OnTaskStart(_, _, name string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, name)
}

func (r *recordingRenderer) OnTaskLog(_ string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, data)
}

func (r *recordingRenderer) OnTaskComplete(_ string, _ time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeCalls++
	r.errs = append(r.errs, err)
}

func (r *recordingRenderer) snapshot() (started []string, logs string, completes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		logs += string(l)
	}
	return append([]string(nil), r.started...), logs, r.completeCalls
}
