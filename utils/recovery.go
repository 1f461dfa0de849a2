package utils

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries a value recovered from a panicking goroutine
type PanicError struct {
	Context string
	Value   interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Context, e.Value)
}

// RecoverFromPanic recovers from panics and logs them. When errp is non-nil
// the recovered panic is stored there as a *PanicError.
func RecoverFromPanic(logger *Logger, context string, errp *error) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered in %s: %v\nStack trace:\n%s", context, r, string(debug.Stack()))
		if errp != nil {
			*errp = &PanicError{Context: context, Value: r}
		}
	}
}

// SafeGo runs a goroutine with panic recovery
func SafeGo(logger *Logger, context string, fn func()) {
	go func() {
		defer RecoverFromPanic(logger, context, nil)
		fn()
	}()
}

// SafeGoWithError runs a goroutine with panic recovery. onError receives the
// error returned by fn, or a *PanicError if fn panicked.
func SafeGoWithError(logger *Logger, context string, fn func() error, onError func(error)) {
	go func() {
		var err error
		defer func() {
			if err != nil && onError != nil {
				onError(err)
			}
		}()
		defer RecoverFromPanic(logger, context, &err)

		if err = fn(); err != nil {
			logger.Error("Error in %s: %v", context, err)
		}
	}()
}
