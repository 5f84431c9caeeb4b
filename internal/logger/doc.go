// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The planner accepts a context and extracts the logger from it, enabling
// scoped, structured logging while the plan report itself goes to stdout.
package logger
