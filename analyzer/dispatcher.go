package analyzer

import (
	"errors"
	"sync"
	"sync/atomic"

	"chat-analyzer/utils"
)

// ErrBusy is returned when a request is dispatched while another is in flight
var ErrBusy = errors.New("another analysis request is still running")

// Dispatcher runs at most one request at a time on a background goroutine and
// hands the result back to the owner through deliver
type Dispatcher struct {
	busy    atomic.Bool
	deliver func(func())
	logger  *utils.Logger
}

// NewDispatcher creates a dispatcher. deliver must run the given function on
// the goroutine that owns application state (fyne.Do in the GUI). A nil
// deliver runs completions on the worker goroutine.
func NewDispatcher(deliver func(func()), logger *utils.Logger) *Dispatcher {
	if deliver == nil {
		deliver = func(fn func()) { fn() }
	}
	return &Dispatcher{deliver: deliver, logger: logger}
}

// Busy reports whether a request is in flight
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Dispatch starts job in the background. done is called exactly once through
// deliver, after the busy flag has been cleared. A panicking job completes
// with a *utils.PanicError.
func (d *Dispatcher) Dispatch(name string, job func() Result, done func(Result)) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}

	var once sync.Once
	finish := func(res Result) {
		once.Do(func() {
			d.deliver(func() {
				d.busy.Store(false)
				if done != nil {
					done(res)
				}
			})
		})
	}

	utils.SafeGoWithError(d.logger, name, func() error {
		finish(job())
		return nil
	}, func(err error) {
		finish(Result{Err: err})
	})
	return nil
}
