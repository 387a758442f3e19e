// Package errors provides structured error types for the retro runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the environment command or core symbol involved, a field
// path into the payload being decoded, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindNilPointer).
//		Command("SET_CONTROLLER_INFO").
//		Path("controller_info", "types").
//		Detail("types pointer is NULL").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ProtocolViolation("retro_run", "Initialized")
//	err := errors.VersionMismatch(errors.PhaseDispatch, "microphone interface", 2, 1)
//
// Only lifecycle and load errors leave a session as Go errors; everything the
// dispatcher produces is logged and reported to the core as false.
package errors
