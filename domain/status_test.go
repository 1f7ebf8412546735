package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy{}
	for progress := MinProgress; progress <= MaxProgress; progress++ {
		got := p.Resolve(ProgressContext{Progress: progress})
		switch progress {
		case 0:
			assert.Equal(t, StatusPending, got)
		case 100:
			assert.Equal(t, StatusCompleted, got)
		default:
			assert.Equal(t, StatusInProgress, got, "progress %d", progress)
		}
	}
}

func TestAggressivePolicy(t *testing.T) {
	p := AggressivePolicy{}
	assert.Equal(t, StatusPending, p.Resolve(ProgressContext{Progress: 0}))
	for progress := 1; progress <= 89; progress++ {
		assert.Equal(t, StatusInProgress, p.Resolve(ProgressContext{Progress: progress}), "progress %d", progress)
	}
	for progress := 90; progress <= 100; progress++ {
		assert.Equal(t, StatusCompleted, p.Resolve(ProgressContext{Progress: progress}), "progress %d", progress)
	}
}

func TestConservativePolicyCompletesOnlyAtHundred(t *testing.T) {
	p := ConservativePolicy{}
	for progress := MinProgress; progress <= MaxProgress; progress++ {
		got := p.Resolve(ProgressContext{Progress: progress, IsOverdue: true})
		assert.Equal(t, progress == 100, got == StatusCompleted, "progress %d", progress)
		assert.NotEqual(t, StatusOverdue, got)
	}
}

func TestDeadlineAwarePolicy(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		overdue  bool
		want     Status
	}{
		{name: "completion wins over overdue", progress: 100, overdue: true, want: StatusCompleted},
		{name: "started and overdue", progress: 50, overdue: true, want: StatusOverdue},
		{name: "zero progress wins over overdue", progress: 0, overdue: true, want: StatusPending},
		{name: "on time", progress: 50, want: StatusInProgress},
		{name: "not started", progress: 0, want: StatusPending},
		{name: "done", progress: 100, want: StatusCompleted},
		{name: "almost done and late", progress: 99, overdue: true, want: StatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeadlineAwarePolicy{}.Resolve(ProgressContext{Progress: tt.progress, IsOverdue: tt.overdue})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyByName(t *testing.T) {
	assert.Equal(t, PolicyAggressive, PolicyByName("aggressive").Name())
	assert.Equal(t, PolicyConservative, PolicyByName(" Conservative ").Name())
	assert.Equal(t, PolicyDeadline, PolicyByName("deadline").Name())
	assert.Equal(t, PolicyDeadline, PolicyByName("deadline-aware").Name())
	assert.Equal(t, PolicyDefault, PolicyByName("default").Name())
	assert.Equal(t, PolicyDefault, PolicyByName("optimistic").Name())
	assert.Equal(t, PolicyDefault, PolicyByName("").Name())

	_, ok := LookupPolicy("optimistic")
	assert.False(t, ok)
	policy, ok := LookupPolicy("Aggressive")
	assert.True(t, ok)
	assert.Equal(t, PolicyAggressive, policy.Name())
}

func TestStatusResolverSwapsPolicy(t *testing.T) {
	r := NewStatusResolver(nil)
	assert.Equal(t, StatusInProgress, r.Resolve(ProgressContext{Progress: 95}))

	r.SetPolicy(AggressivePolicy{})
	assert.Equal(t, StatusCompleted, r.Resolve(ProgressContext{Progress: 95}))

	r.SetPolicy(nil)
	assert.Equal(t, PolicyDefault, r.Policy().Name())
}

func TestStatusResolverConcurrentUse(t *testing.T) {
	r := NewStatusResolver(DefaultPolicy{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.SetPolicy(PolicyByName(PolicyConservative))
			}
			_ = r.Resolve(ProgressContext{Progress: i * 10})
		}(i)
	}
	wg.Wait()
}

func TestClampProgress(t *testing.T) {
	assert.Equal(t, 0, ClampProgress(-5))
	assert.Equal(t, 0, ClampProgress(0))
	assert.Equal(t, 42, ClampProgress(42))
	assert.Equal(t, 100, ClampProgress(100))
	assert.Equal(t, 100, ClampProgress(150))
}
