// Package logging provides structured logging utilities for voicecal.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (user id anonymization, token masking)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithIntent(slog.Default(), "ScheduleEventIntent")
//	logger.Info("availability computed",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("preferences saved",
//	    logging.UserHash(userID))
//
// # Security Considerations
//
//   - Platform user ids are hashed to prevent PII leakage while allowing correlation
//   - Access tokens are never logged directly
package logging
