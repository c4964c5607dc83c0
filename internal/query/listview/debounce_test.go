package listview_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/limsgateway/internal/query/listview"
	"go.uber.org/goleak"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock fires timers synchronously from Advance
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) listview.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	var rest []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case !t.at.After(c.now):
			t.stopped = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

func TestDebouncer_BurstCommitsLastValue(t *testing.T) {
	clock := newFakeClock()
	var committed []string
	d := listview.NewDebouncer(0, clock, func(v string) { committed = append(committed, v) })
	assert.Equal(t, 400*time.Millisecond, d.Delay())

	for _, v := range []string{"s", "sm", "smi", "smit", "smith"} {
		d.Push(v)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, committed)
	assert.True(t, d.Pending())

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, []string{"smith"}, committed)
	assert.False(t, d.Pending())
}

func TestDebouncer_SeparateWindowsCommitEach(t *testing.T) {
	clock := newFakeClock()
	var committed []string
	d := listview.NewDebouncer(400*time.Millisecond, clock, func(v string) { committed = append(committed, v) })

	d.Push("a")
	clock.Advance(450 * time.Millisecond)
	d.Push("b")
	clock.Advance(450 * time.Millisecond)

	assert.Equal(t, []string{"a", "b"}, committed)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	clock := newFakeClock()
	called := false
	d := listview.NewDebouncer(400*time.Millisecond, clock, func(string) { called = true })

	d.Push("x")
	d.Stop()
	clock.Advance(time.Second)

	assert.False(t, called)
	assert.False(t, d.Pending())
}

func TestDebouncer_RealClock(t *testing.T) {
	defer goleak.VerifyNone(t)

	done := make(chan string, 1)
	d := listview.NewDebouncer(20*time.Millisecond, nil, func(v string) { done <- v })
	d.Push("first")
	d.Push("second")

	select {
	case v := <-done:
		require.Equal(t, "second", v)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced value was never committed")
	}
	d.Stop()
}
