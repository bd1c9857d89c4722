// Package panicerr turns panics and runtime.Goexit calls into plain errors,
// so that a VM may halt by unwinding its stack from any depth.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Error is a recovered panic, or a recovered runtime.Goexit if Exit is set.
type Error struct {
	Name  string
	Value interface{}
	Stack []byte
	Exit  bool
}

func (e *Error) Error() string { return fmt.Sprint(e) }

// Format prints the panic stack after the message under "%+v".
func (e *Error) Format(f fmt.State, c rune) {
	if e.Name != "" {
		fmt.Fprintf(f, "%v ", e.Name)
	}
	if e.Exit {
		if e.Name == "" {
			fmt.Fprintf(f, "runtime.Goexit called")
		} else {
			fmt.Fprintf(f, "called runtime.Goexit")
		}
		return
	}
	fmt.Fprintf(f, "panicked: %v", e.Value)
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\nPanic stack: %s", e.Stack)
	}
}

// Unwrap returns the panic value if it was an error.
func (e *Error) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover runs f in a new goroutine, returning its error, or an *Error if
// it panics or exits early.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		// runs last; a no-op unless f neither returned nor panicked
		defer trySend(errch, &Error{Name: name, Exit: true})
		defer catch(name, errch)
		errch <- f()
	}()
	return <-errch
}

// Catch is like Recover, but runs f on the calling goroutine; it is cheaper
// than Recover, at the cost of not being able to intercept runtime.Goexit.
func Catch(name string, f func() error) error {
	errch := make(chan error, 1)
	func() {
		defer catch(name, errch)
		errch <- f()
	}()
	return <-errch
}

func catch(name string, errch chan<- error) {
	if e := recover(); e != nil {
		trySend(errch, &Error{Name: name, Value: e, Stack: debug.Stack()})
	}
}

func trySend(errch chan<- error, err error) {
	select {
	case errch <- err:
	default:
	}
}

// IsPanic returns true if err indicates a recovered panic.
func IsPanic(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && !pe.Exit
}

// IsExit returns true if err indicates a recovered goroutine exit.
func IsExit(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Exit
}

// PanicStack returns a non-empty stacktrace string if err is a recovered
// panic.
func PanicStack(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return string(pe.Stack)
	}
	return ""
}
