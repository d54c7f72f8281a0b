// Package scheduler runs the target task of affected modules in dependency order.
package scheduler

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// EnvModule names the module a task runs for.
	EnvModule = "AFFECTED_MODULE"
	// EnvTarget names the target task being run.
	EnvTarget = "AFFECTED_TARGET"
)

// TaskStatus represents the status of a module's task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting for its dependencies.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
	// StatusBlocked indicates the task never ran because a dependency failed.
	StatusBlocked TaskStatus = "Blocked"
)

// Scheduler executes module tasks with bounded parallelism.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer
	logger   ports.Logger

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(executor ports.Executor, tracer ports.Tracer, logger ports.Logger) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		logger:     logger,
		taskStatus: make(map[domain.InternedString]TaskStatus),
	}
}

// Status returns the status of the module's task in the last run.
func (s *Scheduler) Status(id domain.InternedString) (TaskStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.taskStatus[id]
	return status, ok
}

func (s *Scheduler) updateStatus(id domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[id] = status
}

// Run executes the target task of every affected module, appending args to
// each task's command. Modules without the task are skipped. A module starts only after every affected dependency,
// direct or reached through unaffected modules, has completed. A failure
// stops the failed module's dependents but not unrelated modules.
func (s *Scheduler) Run(
	ctx context.Context,
	reg *domain.Registry,
	decisions *domain.DecisionSet,
	target string,
	args []string,
	parallelism int,
) error {
	if parallelism < 1 {
		parallelism = 1
	}

	runnable := s.collectRunnable(reg, decisions.Affected(), target)
	order, err := reg.Graph().TopologicalOrder(runnable)
	if err != nil {
		return err
	}

	state := s.newRunState(ctx, reg, order, target, args, parallelism)
	s.emitPlan(ctx, state, target)

	return state.runExecutionLoop()
}

func (s *Scheduler) collectRunnable(reg *domain.Registry, affected []domain.InternedString, target string) []domain.InternedString {
	runnable := make([]domain.InternedString, 0, len(affected))
	for _, id := range affected {
		m, ok := reg.Get(id)
		if !ok {
			continue
		}
		if _, ok := m.Task(target); !ok {
			s.logger.Debug("module " + id.String() + " has no " + target + " task, skipping")
			continue
		}
		runnable = append(runnable, id)
	}
	return runnable
}

func (s *Scheduler) emitPlan(ctx context.Context, state *schedulerRunState, target string) {
	planned := make([]string, len(state.order))
	deps := make(map[string][]string, len(state.order))
	for i, id := range state.order {
		planned[i] = id.String()
		deps[id.String()] = domain.Strings(state.deps[id])
	}
	s.tracer.EmitPlan(ctx, planned, deps, []string{target})
}

type result struct {
	module domain.InternedString
	err    error
}

type schedulerRunState struct {
	reg         *domain.Registry
	target      string
	args        []string
	order       []domain.InternedString
	deps        map[domain.InternedString][]domain.InternedString
	dependents  map[domain.InternedString][]domain.InternedString
	inDegree    map[domain.InternedString]int
	ready       []domain.InternedString
	active      int
	resultsCh   chan result
	group       errgroup.Group
	errs        error
	failed      []string
	ctx         context.Context
	parallelism int
	s           *Scheduler
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	reg *domain.Registry,
	order []domain.InternedString,
	target string,
	args []string,
	parallelism int,
) *schedulerRunState {
	deps := runnableDependencies(reg.Graph(), order)

	inDegree := make(map[domain.InternedString]int, len(order))
	dependents := make(map[domain.InternedString][]domain.InternedString, len(order))
	for _, id := range order {
		inDegree[id] = len(deps[id])
		for _, dep := range deps[id] {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	// Ready tasks are queued in topological order so a parallelism of one runs
	// deterministically.
	var ready []domain.InternedString
	for _, id := range order {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	s.mu.Lock()
	s.taskStatus = make(map[domain.InternedString]TaskStatus, len(order))
	for _, id := range order {
		s.taskStatus[id] = StatusPending
	}
	s.mu.Unlock()

	return &schedulerRunState{
		reg:         reg,
		target:      target,
		args:        slices.Clone(args),
		order:       order,
		deps:        deps,
		dependents:  dependents,
		inDegree:    inDegree,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		s:           s,
	}
}

// runnableDependencies maps every runnable module to the nearest runnable
// modules it depends on. Unaffected modules in between are walked through.
func runnableDependencies(
	g *domain.DependencyGraph,
	order []domain.InternedString,
) map[domain.InternedString][]domain.InternedString {
	runnable := make(map[domain.InternedString]bool, len(order))
	for _, id := range order {
		runnable[id] = true
	}

	deps := make(map[domain.InternedString][]domain.InternedString, len(order))
	for _, id := range order {
		seen := map[domain.InternedString]bool{id: true}
		stack := g.DependenciesOf(id)
		var found []domain.InternedString
		for len(stack) > 0 {
			dep := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if runnable[dep] {
				found = append(found, dep)
				continue
			}
			stack = append(stack, g.DependenciesOf(dep)...)
		}
		slices.SortFunc(found, domain.InternedString.Compare)
		deps[id] = found
	}
	return deps
}

func (state *schedulerRunState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	// Drain in-flight tasks so no goroutine outlives the run.
	for state.active > 0 {
		state.handleResult(<-state.resultsCh)
	}
	_ = state.group.Wait()

	state.markBlocked()

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}
	if len(state.failed) > 0 {
		return zerr.With(
			zerr.With(zerr.Wrap(state.errs, "target task failed"), "target", state.target),
			"failed", strings.Join(state.failed, ", "),
		)
	}
	return state.errs
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		id := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(id, StatusRunning)

		state.group.Go(func() error {
			state.resultsCh <- result{module: id, err: state.executeTask(id)}
			return nil
		})
	}
}

func (state *schedulerRunState) executeTask(id domain.InternedString) error {
	m, _ := state.reg.Get(id)
	task, _ := m.Task(state.target)
	if len(task.Command) > 0 && len(state.args) > 0 {
		task.Command = slices.Concat(task.Command, state.args)
	}

	ctx, span := state.s.tracer.Start(state.ctx, id.String())
	defer span.End()

	span.SetAttribute("affected.module", id.String())
	span.SetAttribute("affected.target", state.target)

	env := []string{
		EnvModule + "=" + id.String(),
		EnvTarget + "=" + state.target,
	}
	if err := state.s.executor.Execute(ctx, &task, env, span, span); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--

	if res.err != nil {
		wrapped := zerr.With(zerr.Wrap(res.err, domain.ErrTaskExecutionFailed.Error()), "module", res.module.String())
		state.errs = errors.Join(state.errs, wrapped)
		state.failed = append(state.failed, res.module.String())
		state.s.updateStatus(res.module, StatusFailed)
		return
	}

	state.s.updateStatus(res.module, StatusCompleted)
	for _, dep := range state.dependents[res.module] {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

// markBlocked reports tasks that never became ready.
func (state *schedulerRunState) markBlocked() {
	for _, id := range state.order {
		status, _ := state.s.Status(id)
		if status != StatusPending {
			continue
		}
		state.s.updateStatus(id, StatusBlocked)
		if state.ctx.Err() == nil {
			state.s.logger.Warn("skipping " + id.String() + ": a dependency failed")
		}
	}
}
