package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"postgres", "redis", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "redis", "postgres"}, order)
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	errA, errB := errors.New("a"), errors.New("b")
	called := false

	m.Register("first", func(context.Context) error {
		called = true
		return nil
	})
	m.Register("a", func(context.Context) error { return errA })
	m.Register("b", func(context.Context) error { return errB })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.True(t, called)
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("buffer", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	m.Register("late", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestShutdownAppliesTimeout(t *testing.T) {
	m := New(10*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, m.Shutdown(context.Background()), context.DeadlineExceeded)
}

func TestListenCancelsWithParent(t *testing.T) {
	m := New(time.Second, nil)
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := m.Listen(parent)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
