package sticky

import "errors"

// Errors returned by the filesystem adapters, the store and the app controller.
//
// Check them with errors.Is:
//
//	if errors.Is(err, sticky.ErrNotFound) {
//	    // Stickies directory or bundle missing
//	}
var (
	// ErrNotFound is returned when an expected directory or bundle is absent.
	ErrNotFound = errors.New("not found")

	// ErrFormat is returned when structured data exists but cannot be parsed,
	// such as a state file that is neither of the two known plist schemas.
	ErrFormat = errors.New("unrecognized format")

	// ErrStorage is returned when the database fails to open, prepare or execute.
	ErrStorage = errors.New("storage error")

	// ErrNoteNotFound is returned by lookups of a single note by ID.
	ErrNoteNotFound = errors.New("note not found")

	// ErrNotRunning is returned when an operation requires Stickies.app to be running.
	ErrNotRunning = errors.New("application not running")

	// ErrUnsupported is returned on platforms without Stickies.app process control.
	ErrUnsupported = errors.New("operation not supported on this platform")
)

// IsNotFound reports whether err means an expected directory or bundle was absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoteNotFound)
}

// IsFormat reports whether err is a parse failure of existing data.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsStorage reports whether err came from the database backend.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
