// Package fault defines the error taxonomy shared by the bootstrap pipeline
// and the dispatcher.
//
//   - ConfigurationError          fatal, aborts startup
//   - ComponentConstructionError  one component is skipped, bootstrap continues
//   - InjectionResolutionFailure  reported according to the injector's miss policy
//   - ErrRouteNotFound            answered with a fixed 404 body
//   - HandlerInvocationFault      answered with a 500 body listing stack frames
//
// Use errors.As to match the typed errors:
//
//	var cfgErr *fault.ConfigurationError
//	if errors.As(err, &cfgErr) { ... }
package fault
