// Package warn provides the process-wide sink for non-fatal diagnostics.
//
// Reading a C3D file can surface conditions that shouldn't abort parsing —
// a short frame read at EOF, a missing POINT:LABELS parameter, a DATA_START
// that disagrees with the header. Those are reported through Sink instead
// of being returned as errors, matching the propagation policy in the
// format's read path: parameter-section errors are fatal, everything else
// is a warning.
package warn

import "log"

// Sink receives a formatted diagnostic message. The default implementation
// writes to the standard logger; callers may replace it to redirect
// warnings (capture them in tests, forward them to their own logging
// stack, or silence them entirely).
var Sink func(format string, args ...any) = func(format string, args ...any) {
	log.Printf(format, args...)
}
