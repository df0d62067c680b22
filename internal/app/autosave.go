package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/tripbook/internal/state"
)

const defaultAutosaveDelay = 3000 * time.Millisecond

// Timer is the part of *time.Timer the autosaver needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Autosaver saves the session after a quiet period following an edit. Each
// new edit restarts the countdown, so a burst of edits produces one save.
type Autosaver struct {
	store     *state.Store
	delay     time.Duration
	afterFunc AfterFunc
	logger    *slog.Logger
	ctx       context.Context

	mu          sync.Mutex
	timer       Timer
	generation  uint64
	seen        uint64
	unsubscribe func()
	stopped     bool
}

// AutosaveOptions configure NewAutosaver. Zero values use defaults.
type AutosaveOptions struct {
	Delay     time.Duration
	AfterFunc AfterFunc
	Logger    *slog.Logger
}

// NewAutosaver builds an autosaver for store. Call Start to begin watching.
func NewAutosaver(ctx context.Context, store *state.Store, opts AutosaveOptions) *Autosaver {
	a := &Autosaver{
		store:     store,
		delay:     opts.Delay,
		afterFunc: opts.AfterFunc,
		logger:    opts.Logger,
		ctx:       ctx,
	}
	if a.delay <= 0 {
		a.delay = defaultAutosaveDelay
	}
	if a.afterFunc == nil {
		a.afterFunc = realAfterFunc
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Start subscribes to the store. It is safe to call once.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsubscribe != nil || a.stopped {
		return
	}
	a.seen = a.store.Snapshot().Revision
	a.unsubscribe = a.store.Subscribe(a.onChange)
}

func (a *Autosaver) onChange(snap state.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped || snap.Revision == a.seen {
		return
	}
	a.seen = snap.Revision
	if !snap.Dirty || !snap.HasCurrent {
		return
	}
	a.resetLocked()
}

// resetLocked replaces any pending timer with a fresh one.
func (a *Autosaver) resetLocked() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.generation++
	gen := a.generation
	a.timer = a.afterFunc(a.delay, func() { a.fire(gen) })
}

func (a *Autosaver) fire(gen uint64) {
	a.mu.Lock()
	// A timer that was superseded or stopped may still run if Stop lost
	// the race with its goroutine.
	if a.stopped || gen != a.generation {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	snap := a.store.Snapshot()
	if !snap.Dirty || !snap.HasCurrent {
		a.logger.Debug("autosave skipped, nothing to save")
		return
	}
	a.logger.Debug("autosave", "book", snap.Current.ID)
	a.store.Save(a.ctx)
}

// Pending reports whether a save is scheduled.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

// Flush cancels the countdown and saves now if there are unsaved edits,
// waiting for the write to finish or ctx to end.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	a.cancelLocked()
	a.mu.Unlock()

	snap := a.store.Snapshot()
	if !snap.Dirty || !snap.HasCurrent {
		return nil
	}
	return a.store.Save(ctx).WaitContext(ctx)
}

// Stop unsubscribes and drops any pending save.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	a.stopped = true
	a.cancelLocked()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (a *Autosaver) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.generation++
}
