package shutdown

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestCoordinator_AdmitBeforeDrain(t *testing.T) {
	c := New(time.Second)

	release, ok := c.Admit()
	require.True(t, ok)
	assert.Equal(t, int64(1), c.InFlight())

	release()
	release()
	assert.Zero(t, c.InFlight())
	assert.False(t, c.Draining())
}

func TestCoordinator_RefusesWhileDraining(t *testing.T) {
	c := New(time.Second)
	c.Begin()

	_, ok := c.Admit()
	assert.False(t, ok)
	assert.Zero(t, c.InFlight())
}

func TestCoordinator_IdleBeginTerminatesImmediately(t *testing.T) {
	c := New(time.Hour)
	c.Begin()

	assert.True(t, isClosed(c.Terminated()))
}

func TestCoordinator_LastRequestEndsDrain(t *testing.T) {
	c := New(time.Hour)

	r1, ok := c.Admit()
	require.True(t, ok)
	r2, ok := c.Admit()
	require.True(t, ok)

	c.Begin()
	assert.False(t, isClosed(c.Terminated()))

	r1()
	assert.False(t, isClosed(c.Terminated()))

	r2()
	assert.True(t, isClosed(c.Terminated()))
}

func TestCoordinator_GraceTimerFires(t *testing.T) {
	c := New(20 * time.Millisecond)

	release, ok := c.Admit()
	require.True(t, ok)
	defer release()

	c.Begin()

	select {
	case <-c.Terminated():
	case <-time.After(time.Second):
		t.Fatal("grace timer did not fire")
	}
	assert.Equal(t, int64(1), c.InFlight())
}

func TestCoordinator_BeginIsIdempotent(t *testing.T) {
	c := New(time.Hour)
	var calls atomic.Int32
	c.OnDrain(func() { calls.Add(1) })

	release, _ := c.Admit()
	c.Begin()
	c.Begin()
	release()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCoordinator_OnDrainAfterBegin(t *testing.T) {
	c := New(time.Hour)
	c.Begin()

	called := false
	c.OnDrain(func() { called = true })
	assert.True(t, called)
}

func TestCoordinator_Terminate(t *testing.T) {
	c := New(time.Hour)
	_, ok := c.Admit()
	require.True(t, ok)

	c.Terminate()
	assert.True(t, isClosed(c.Terminated()))
	assert.True(t, c.Draining())
}

func TestCoordinator_WatchStopsOnContext(t *testing.T) {
	c := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Watch(ctx, os.Interrupt)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return")
	}
	assert.False(t, c.Draining())
}
