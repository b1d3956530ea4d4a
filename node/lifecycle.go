package node

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// State represents the lifecycle state of a Service.
type State int

const (
	StateCreated  State = iota // registered but not started
	StateStarting              // start in progress
	StateRunning               // running normally
	StateStopping              // stop in progress
	StateStopped               // stopped cleanly
	StateFailed                // failed to start or crashed
)

// String returns a human-readable name for the service state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Service is a node subsystem that runs a single-threaded cooperative event
// loop until ctx is cancelled: L1Node, L2Node, and ClientNode all implement
// it. Run must not spawn further goroutines or share mutable state outside
// messages sent on its own channels; it suspends only on channel
// send/receive and timer expiry.
type Service interface {
	Run(ctx context.Context) error
	Name() string
}

// entry tracks a registered service and its state.
type entry struct {
	svc      Service
	state    State
	err      error
	priority int // lower value = start first
}

// LifecycleManager registers services and runs them concurrently under one
// cancellation context, tracking each one's state.
type LifecycleManager struct {
	mu       sync.Mutex
	services []*entry
	byName   map[string]*entry
}

// NewLifecycleManager returns an empty LifecycleManager.
func NewLifecycleManager() *LifecycleManager {
	return &LifecycleManager{byName: make(map[string]*entry)}
}

// Register adds a service to the manager. Priority determines start order
// in RunAll: lower values start first. Returns an error if the service
// name is already registered.
func (lm *LifecycleManager) Register(svc Service, priority int) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if _, exists := lm.byName[svc.Name()]; exists {
		return fmt.Errorf("node: service %q already registered", svc.Name())
	}
	e := &entry{svc: svc, state: StateCreated, priority: priority}
	lm.services = append(lm.services, e)
	lm.byName[svc.Name()] = e
	return nil
}

// RunAll launches every registered service's Run loop under one
// errgroup.Group: the group's context is cancelled as soon as any service
// returns a non-nil error, which in turn tells every other service to wind
// down; a service that returns nil does not cancel the others. RunAll waits
// for every service and returns the first non-nil error any of them
// returned, which may be a cancellation error.
func (lm *LifecycleManager) RunAll(ctx context.Context) error {
	ordered := lm.sortedServices()

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range ordered {
		e := e
		e.state = StateStarting
		g.Go(func() error {
			e.state = StateRunning
			err := e.svc.Run(gctx)
			lm.mu.Lock()
			if err != nil {
				e.state = StateFailed
				e.err = err
			} else {
				e.state = StateStopped
			}
			lm.mu.Unlock()
			return err
		})
	}
	return g.Wait()
}

// GetState returns the current state of a service by name. Returns
// StateFailed if the service is not found.
func (lm *LifecycleManager) GetState(name string) State {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	e, ok := lm.byName[name]
	if !ok {
		return StateFailed
	}
	return e.state
}

func (lm *LifecycleManager) sortedServices() []*entry {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	sorted := make([]*entry, len(lm.services))
	copy(sorted, lm.services)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].priority < sorted[j].priority })
	return sorted
}
