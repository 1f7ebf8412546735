package domain

import (
	"strings"
	"sync"
)

// Status is the discrete label derived from a task's progress.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOverdue    Status = "Overdue"
)

// Valid reports whether s is one of the known labels.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

const (
	MinProgress = 0
	MaxProgress = 100
)

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(value int) int {
	if value < MinProgress {
		return MinProgress
	}
	if value > MaxProgress {
		return MaxProgress
	}
	return value
}

// ProgressContext is the input of a StatusPolicy. Progress must already be clamped.
type ProgressContext struct {
	Progress  int
	IsOverdue bool
}

// StatusPolicy maps progress to a status label.
type StatusPolicy interface {
	Name() string
	Resolve(ctx ProgressContext) Status
}

const (
	PolicyDefault      = "default"
	PolicyAggressive   = "aggressive"
	PolicyConservative = "conservative"
	PolicyDeadline     = "deadline"
)

type DefaultPolicy struct{}

func (DefaultPolicy) Name() string { return PolicyDefault }

func (DefaultPolicy) Resolve(ctx ProgressContext) Status {
	switch ctx.Progress {
	case MinProgress:
		return StatusPending
	case MaxProgress:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// AggressivePolicy treats anything from 90% up as done.
type AggressivePolicy struct{}

func (AggressivePolicy) Name() string { return PolicyAggressive }

func (AggressivePolicy) Resolve(ctx ProgressContext) Status {
	switch {
	case ctx.Progress == MinProgress:
		return StatusPending
	case ctx.Progress >= 90:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

type ConservativePolicy struct{}

func (ConservativePolicy) Name() string { return PolicyConservative }

func (ConservativePolicy) Resolve(ctx ProgressContext) Status {
	switch {
	case ctx.Progress == MinProgress:
		return StatusPending
	case ctx.Progress < MaxProgress:
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

// DeadlineAwarePolicy reports Overdue for started, unfinished work past its deadline.
// Zero progress and full completion both take precedence over the overdue flag.
type DeadlineAwarePolicy struct{}

func (DeadlineAwarePolicy) Name() string { return PolicyDeadline }

func (DeadlineAwarePolicy) Resolve(ctx ProgressContext) Status {
	switch {
	case ctx.Progress == MinProgress:
		return StatusPending
	case ctx.Progress == MaxProgress:
		return StatusCompleted
	case ctx.IsOverdue:
		return StatusOverdue
	default:
		return StatusInProgress
	}
}

// PolicyByName returns the named policy, falling back to DefaultPolicy for unknown names.
func PolicyByName(name string) StatusPolicy {
	if policy, ok := LookupPolicy(name); ok {
		return policy
	}
	return DefaultPolicy{}
}

// LookupPolicy reports whether name denotes a known policy.
func LookupPolicy(name string) (StatusPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyDefault:
		return DefaultPolicy{}, true
	case PolicyAggressive:
		return AggressivePolicy{}, true
	case PolicyConservative:
		return ConservativePolicy{}, true
	case PolicyDeadline, "deadline-aware":
		return DeadlineAwarePolicy{}, true
	default:
		return nil, false
	}
}

// StatusResolver holds the active policy. It is safe for concurrent use.
type StatusResolver struct {
	mu     sync.RWMutex
	policy StatusPolicy
}

func NewStatusResolver(policy StatusPolicy) *StatusResolver {
	if policy == nil {
		policy = DefaultPolicy{}
	}
	return &StatusResolver{policy: policy}
}

// SetPolicy swaps the active policy. A nil policy resets to the default one.
func (r *StatusResolver) SetPolicy(policy StatusPolicy) {
	if policy == nil {
		policy = DefaultPolicy{}
	}
	r.mu.Lock()
	r.policy = policy
	r.mu.Unlock()
}

func (r *StatusResolver) Policy() StatusPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policy
}

func (r *StatusResolver) Resolve(ctx ProgressContext) Status {
	return r.Policy().Resolve(ctx)
}
