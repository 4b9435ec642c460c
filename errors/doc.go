// Package errors provides structured error types for wail.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Resolution problems use the three domain kinds: KindComponent,
// KindLink and KindInterface. The Error type carries the component and
// interface it is about, a detail message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindInterface).
//		Component("front").
//		Interface("ns:pkg/backend-call").
//		Detail("no component exports it").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ComponentMismatch("front", "ns:pkg/backend-call")
//	err := errors.NotFound(errors.PhaseLoad, "component", "back")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
