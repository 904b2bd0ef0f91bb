// Package errors provides foundational, type-safe error primitives used across twbuild.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, manifest, filesystem, build, runtime)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "read source file").
//		WithContext("path", path).
//		Build()
package errors
