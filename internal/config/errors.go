package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoRoot is returned when no root document is given.
	ErrNoRoot = errors.New("no root document specified: use --root")

	// ErrNoDest is returned when neither --dest nor $DEST names an output file.
	ErrNoDest = errors.New("no destination specified: use --dest or set DEST")

	// ErrSameRootAndDest is returned when the output would overwrite the root
	// document it is built from.
	ErrSameRootAndDest = errors.New("destination must differ from the root document")

	// ErrInvalidLogFormat is returned for a --log-format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrEmptyRemotePrefix is returned when the remote prefix is empty, which
	// would mark every reference as remote.
	ErrEmptyRemotePrefix = errors.New("remote prefix must not be empty")

	// ErrIncompleteTarget is returned for a configured target without a root
	// or a destination.
	ErrIncompleteTarget = errors.New("target needs both root and dest")

	// ErrDuplicateDest is returned when two targets write the same file.
	ErrDuplicateDest = errors.New("destination used by more than one target")

	// ErrInvalidJobs is returned when fewer than one concurrent build is requested.
	ErrInvalidJobs = errors.New("jobs must be at least 1")
)
