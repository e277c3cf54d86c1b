// Package errors provides the classified error primitives used across cosmodrome.
//
// Key features:
//   - ErrorCategory: broad classification (config, template, filesystem, path, build, ...)
//   - ErrorSeverity: impact level; fatal errors abort a build, others fail one file
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing messages for the CLI
//
// Example usage:
//
//	err := errors.TemplateError("wrapper has no placeholder").
//		WithContext("path", wrapperPath).
//		WithCause(wrapper.ErrMalformedTemplate).
//		Build()
package errors
