package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrRouteNotFound is returned by route lookups that miss. It never reaches
// the client as an error: the dispatcher answers it with a fixed 404 body.
var ErrRouteNotFound = errors.New("route not found")

// ConfigurationError reports a misconfiguration found during bootstrap.
// It always aborts startup.
type ConfigurationError struct {
	Subject string // what was being configured (a key, a type, a field)
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Configuration builds a *ConfigurationError with a formatted reason.
func Configuration(subject, format string, args ...any) error {
	return &ConfigurationError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// ComponentConstructionError reports that one discovered type could not be
// turned into a bean. Bootstrap skips the component and continues.
type ComponentConstructionError struct {
	Class string
	Err   error
}

func (e *ComponentConstructionError) Error() string {
	return fmt.Sprintf("cannot construct component %s: %v", e.Class, e.Err)
}

func (e *ComponentConstructionError) Unwrap() error { return e.Err }

// InjectionResolutionFailure reports an autowired field whose source bean
// is not registered.
type InjectionResolutionFailure struct {
	Bean  string // bean owning the field
	Field string
	Name  string // bean name that was looked up
}

func (e *InjectionResolutionFailure) Error() string {
	return fmt.Sprintf("no bean named [%s] for field %s of bean [%s]", e.Name, e.Field, e.Bean)
}

// HandlerInvocationFault wraps anything that went wrong while binding or
// invoking a handler. Err always carries a stack trace.
type HandlerInvocationFault struct {
	Route string
	Err   error
}

func (e *HandlerInvocationFault) Error() string {
	return fmt.Sprintf("handler for %s failed: %v", e.Route, e.Err)
}

func (e *HandlerInvocationFault) Unwrap() error { return e.Err }

// StackTrace returns the deepest stack recorded in the wrapped error chain.
func (e *HandlerInvocationFault) StackTrace() errors.StackTrace {
	return StackOf(e.Err)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// StackOf walks the cause chain of err and returns the stack recorded
// closest to the original failure, or nil when none was recorded.
func StackOf(err error) errors.StackTrace {
	var st errors.StackTrace
	for err != nil {
		if t, ok := err.(stackTracer); ok {
			st = t.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return st
}

// Invocation wraps err as a HandlerInvocationFault, attaching a stack if the
// chain does not carry one yet.
func Invocation(route string, err error) *HandlerInvocationFault {
	if StackOf(err) == nil {
		err = errors.WithStack(err)
	}
	return &HandlerInvocationFault{Route: route, Err: err}
}

type panicError struct {
	value any
}

func (p panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

// Recovered converts a value obtained from recover() into an error carrying
// the stack of the panicking goroutine. It must be called from the deferred
// function itself so that the panicking frames are still on the stack.
func Recovered(r any) error {
	if err, ok := r.(error); ok {
		return errors.WithStack(errors.WithMessage(err, "panic"))
	}
	return errors.WithStack(panicError{value: r})
}

// RecoveredValue returns the original value passed to panic, or nil when
// err did not come from Recovered.
func RecoveredValue(err error) any {
	var p panicError
	if errors.As(err, &p) {
		return p.value
	}
	return nil
}
